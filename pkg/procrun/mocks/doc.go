// Package mocks holds the generated mocks for process runners.
//
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mock.go -package=mocks github.com/launchrctl/installbuild/pkg/procrun Runner
package mocks
