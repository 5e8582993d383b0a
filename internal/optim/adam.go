package optim

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Adam implements the Adam (adaptive moment estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * grad
//	v_t = beta2 * v_{t-1} + (1-beta2) * grad²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization"
// (Kingma & Ba, 2014).
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int // timestep for bias correction
	m      map[*nn.Parameter][]float32
	v      map[*nn.Parameter][]float32
}

// AdamConfig holds Adam hyperparameters. Zero values get the standard
// defaults: LR 0.001, Betas {0.9, 0.999}, Eps 1e-8.
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter][]float32),
		v:      make(map[*nn.Parameter][]float32),
	}
}

// Name returns "Adam".
func (a *Adam) Name() string { return "Adam" }

// Step applies one Adam update to every parameter with a gradient in
// the map.
func (a *Adam) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		gradData := grad.AsFloat32()
		paramData := param.Data()

		m, ok := a.m[param]
		if !ok {
			m = make([]float32, len(paramData))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float32, len(paramData))
			a.v[param] = v
		}

		for i := range paramData {
			g := gradData[i]
			m[i] = a.beta1*m[i] + (1.0-a.beta1)*g
			v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g

			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2

			paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// Timestep returns the number of Step calls so far.
func (a *Adam) Timestep() int {
	return a.t
}

// StateDict exports moment buffers as "m.{index}"/"v.{index}" entries
// plus the shared timestep "t", everything needed to resume training
// with identical updates.
func (a *Adam) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)

	step := tensor.MustNewRaw(tensor.Shape{1}, tensor.Int32)
	step.AsInt32()[0] = int32(a.t)
	stateDict["t"] = step

	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			raw := tensor.MustNewRaw(param.Tensor().Shape(), tensor.Float32)
			copy(raw.AsFloat32(), m)
			stateDict[fmt.Sprintf("m.%d", i)] = raw
		}
		if v, ok := a.v[param]; ok {
			raw := tensor.MustNewRaw(param.Tensor().Shape(), tensor.Float32)
			copy(raw.AsFloat32(), v)
			stateDict[fmt.Sprintf("v.%d", i)] = raw
		}
	}
	return stateDict
}

// LoadStateDict restores moments and the timestep saved by StateDict.
func (a *Adam) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	a.m = make(map[*nn.Parameter][]float32)
	a.v = make(map[*nn.Parameter][]float32)
	a.t = 0

	if step, ok := stateDict["t"]; ok {
		if step.DType() != tensor.Int32 || step.NumElements() != 1 {
			return errors.New("invalid timestep entry in optimizer state")
		}
		a.t = int(step.AsInt32()[0])
	}

	for i, param := range a.params {
		want := param.Tensor().Shape()
		if raw, ok := stateDict[fmt.Sprintf("m.%d", i)]; ok {
			if !raw.Shape().Equal(want) {
				return errors.Errorf("first moment shape mismatch for parameter %d: expected %v, got %v",
					i, want, raw.Shape())
			}
			m := make([]float32, raw.NumElements())
			copy(m, raw.AsFloat32())
			a.m[param] = m
		}
		if raw, ok := stateDict[fmt.Sprintf("v.%d", i)]; ok {
			if !raw.Shape().Equal(want) {
				return errors.Errorf("second moment shape mismatch for parameter %d: expected %v, got %v",
					i, want, raw.Shape())
			}
			v := make([]float32, raw.NumElements())
			copy(v, raw.AsFloat32())
			a.v[param] = v
		}
	}
	return nil
}
