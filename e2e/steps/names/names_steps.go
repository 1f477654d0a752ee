package names

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cucumber/godog"

	"ans/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, actor string, body any) error
	Address(actor string) (domain.Address, error)
}

// RegisterSteps registers name assignment and lookup steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &nameSteps{tc: tc}

	ctx.Step(`^"([^"]*)" assigns the name "([^"]*)"$`, steps.assignName)
	ctx.Step(`^an anonymous caller assigns the name "([^"]*)"$`, steps.assignNameAnonymously)
	ctx.Step(`^anyone resolves the name "([^"]*)"$`, steps.resolveName)
	ctx.Step(`^anyone looks up the name of "([^"]*)"$`, steps.resolveAddress)
}

type nameSteps struct {
	tc TestContext
}

func (s *nameSteps) assignName(ctx context.Context, actor, name string) error {
	return s.tc.Do(http.MethodPost, "/v1/names", actor, map[string]string{"name": name})
}

func (s *nameSteps) assignNameAnonymously(ctx context.Context, name string) error {
	return s.tc.Do(http.MethodPost, "/v1/names", "", map[string]string{"name": name})
}

func (s *nameSteps) resolveName(ctx context.Context, name string) error {
	return s.tc.Do(http.MethodGet, "/v1/names?"+url.Values{"name": {name}}.Encode(), "", nil)
}

func (s *nameSteps) resolveAddress(ctx context.Context, actor string) error {
	addr, err := s.tc.Address(actor)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodGet, "/v1/addresses/"+addr.Hex(), "", nil)
}
