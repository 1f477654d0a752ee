package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"ans/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, actor string, body any) error
	LastStatus() int
	ResponseField(field string) (any, error)
	Address(actor string) (domain.Address, error)
}

// RegisterSteps registers generic response assertions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be the address of "([^"]*)"$`, steps.responseFieldShouldBeAddressOf)
	ctx.Step(`^the response field "([^"]*)" should be the zero address$`, steps.responseFieldShouldBeZero)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.LastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	return s.responseFieldShouldBe(ctx, "error", code)
}

func (s *commonSteps) responseFieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeAddressOf(ctx context.Context, field, actor string) error {
	want, err := s.tc.Address(actor)
	if err != nil {
		return err
	}
	return s.addressFieldShouldBe(field, want)
}

func (s *commonSteps) responseFieldShouldBeZero(ctx context.Context, field string) error {
	return s.addressFieldShouldBe(field, domain.ZeroAddress)
}

func (s *commonSteps) addressFieldShouldBe(field string, want domain.Address) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	raw, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s is not a string: %v", field, v)
	}
	got, err := domain.ParseAddress(raw)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %s, got %s", field, want.Hex(), got.Hex())
	}
	return nil
}
