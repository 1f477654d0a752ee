package e2e

import (
	"github.com/cucumber/godog"

	"ans/e2e/steps/admin"
	"ans/e2e/steps/common"
	"ans/e2e/steps/names"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	names.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}
