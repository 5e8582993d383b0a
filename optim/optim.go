// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for gradbook's optimizers.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
package optim

import (
	"github.com/gradbook-ml/gradbook/internal/nn"
	internal "github.com/gradbook-ml/gradbook/internal/optim"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer = internal.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = internal.SGD

// SGDConfig holds SGD hyperparameters.
type SGDConfig = internal.SGDConfig

// Adam is the adaptive moment estimation optimizer.
type Adam = internal.Adam

// AdamConfig holds Adam hyperparameters.
type AdamConfig = internal.AdamConfig

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return internal.NewSGD(params, config)
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return internal.NewAdam(params, config)
}
