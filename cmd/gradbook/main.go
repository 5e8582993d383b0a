// Package main provides the gradbook CLI: train, evaluate and inspect
// fully connected classifiers on MNIST-family datasets.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "0.3.1"

func usage() {
	fmt.Fprintln(os.Stderr, "gradbook - small neural networks, trained from scratch in Go")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  gradbook train    [flags]   train a classifier")
	fmt.Fprintln(os.Stderr, "  gradbook eval     [flags]   evaluate a saved model on a test split")
	fmt.Fprintln(os.Stderr, "  gradbook inspect  <file>    print the header of a .grad file")
	fmt.Fprintln(os.Stderr, "  gradbook version            show version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'gradbook <command> -h' for command flags.")
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "version":
		fmt.Printf("gradbook %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gradbook %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
