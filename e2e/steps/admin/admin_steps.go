package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"

	"ans/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, actor string, body any) error
	LastStatus() int
	Address(actor string) (domain.Address, error)
	StorageComponent() domain.Address
}

// RegisterSteps registers owner administration steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^"([^"]*)" binds the storage component$`, steps.bindStorage)
	ctx.Step(`^the storage component is bound$`, steps.storageIsBound)
	ctx.Step(`^"([^"]*)" transfers storage ownership to "([^"]*)"$`, steps.transferStorageOwnership)
	ctx.Step(`^"([^"]*)" transfers storage ownership to the zero address$`, steps.transferToZero)
	ctx.Step(`^"([^"]*)" renounces storage ownership$`, steps.renounceStorageOwnership)
	ctx.Step(`^anyone reads the ownership state$`, steps.readOwnership)
	ctx.Step(`^"([^"]*)" writes the name "([^"]*)" for "([^"]*)" directly to storage$`, steps.writeToStorage)
	ctx.Step(`^"([^"]*)" hands storage ownership directly to "([^"]*)"$`, steps.storageTransfer)
	ctx.Step(`^anyone reads the storage owner$`, steps.readStorageOwner)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) bindStorage(ctx context.Context, actor string) error {
	return s.tc.Do(http.MethodPut, "/v1/admin/storage", actor, map[string]string{
		"address": s.tc.StorageComponent().Hex(),
	})
}

func (s *adminSteps) storageIsBound(ctx context.Context) error {
	if err := s.bindStorage(ctx, "owner"); err != nil {
		return err
	}
	if status := s.tc.LastStatus(); status != http.StatusNoContent {
		return fmt.Errorf("binding storage returned %d", status)
	}
	return nil
}

func (s *adminSteps) transferStorageOwnership(ctx context.Context, actor, newOwner string) error {
	addr, err := s.tc.Address(newOwner)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, "/v1/admin/storage/owner", actor, map[string]string{
		"new_owner": addr.Hex(),
	})
}

func (s *adminSteps) transferToZero(ctx context.Context, actor string) error {
	return s.tc.Do(http.MethodPut, "/v1/admin/storage/owner", actor, map[string]string{
		"new_owner": domain.ZeroAddress.Hex(),
	})
}

func (s *adminSteps) renounceStorageOwnership(ctx context.Context, actor string) error {
	return s.tc.Do(http.MethodDelete, "/v1/admin/storage/owner", actor, nil)
}

func (s *adminSteps) readOwnership(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/v1/owner", "", nil)
}

func (s *adminSteps) writeToStorage(ctx context.Context, actor, name, target string) error {
	addr, err := s.tc.Address(target)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPost, "/v1/storage/names", actor, map[string]string{
		"address": addr.Hex(),
		"name":    name,
	})
}

func (s *adminSteps) storageTransfer(ctx context.Context, actor, newOwner string) error {
	addr, err := s.tc.Address(newOwner)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, "/v1/storage/owner", actor, map[string]string{
		"new_owner": addr.Hex(),
	})
}

func (s *adminSteps) readStorageOwner(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/v1/storage/owner", "", nil)
}
