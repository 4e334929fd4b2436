// Command um runs a Universal Machine program.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-universal-machine/um/vm"
)

func main() {
	log.SetFlags(0)

	var inPath, outPath string
	flag.StringVar(&inPath, "i", "", "read machine input from this file instead of stdin")
	flag.StringVar(&outPath, "o", "", "write machine output to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-i input] [-o output] program.um\n", os.Args[0])
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	in, out, closeStreams, err := openStreams(inPath, outPath)
	if err != nil {
		log.Fatalf("um: %s", err)
	}
	defer closeStreams()

	program, err := loadProgram(args[0])
	if err != nil {
		log.Fatalf("um: %s", err)
	}

	m := vm.New(program, vm.WithStdio(in, out))
	if err := m.Run(); err != nil {
		var trap *vm.Trap
		if errors.As(err, &trap) {
			log.Fatalf("um: %s", trap)
		}
		log.Fatalf("um: %s", err)
	}
}

func loadProgram(path string) (vm.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &vm.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	program, err := vm.Load(f)
	if err != nil {
		return nil, &vm.LoadError{Path: path, Err: err}
	}
	return program, nil
}

func openStreams(inPath, outPath string) (in *os.File, out *os.File, closeFn func(), err error) {
	in = os.Stdin
	out = os.Stdout
	closers := make([]*os.File, 0, 2)
	closeFn = func() {
		for _, f := range closers {
			f.Close()
		}
	}

	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return nil, nil, closeFn, err
		}
		in = f
		closers = append(closers, f)
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			closeFn()
			return nil, nil, func() {}, err
		}
		out = f
		closers = append(closers, f)
	}

	return in, out, closeFn, nil
}
