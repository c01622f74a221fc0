package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	catalogQueries "github.com/andrescamacho/warehouse-go/internal/application/catalog/queries"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/test/helpers"
)

type dependencyContext struct {
	*world
	estimates int
}

func (ctx *dependencyContext) anEstimateUsing(status, name string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	ctx.estimates++
	estimateID := fmt.Sprintf("est-%d", ctx.estimates)
	number := fmt.Sprintf("EST-%03d", ctx.estimates)
	return helpers.InsertEstimate(context.Background(), ctx.engine.DB, estimateID, number, status, id)
}

func (ctx *dependencyContext) dependencies(name string) (*dependencyQueries.GetDependenciesResponse, error) {
	id, err := ctx.materialID(name)
	if err != nil {
		return nil, err
	}
	resp, err := ctx.engine.Mediator.Send(context.Background(), &dependencyQueries.GetDependenciesQuery{MaterialID: id})
	if err != nil {
		return nil, err
	}
	return resp.(*dependencyQueries.GetDependenciesResponse), nil
}

func (ctx *dependencyContext) dependenciesShouldList(name string, approved, other, reservations int) error {
	d, err := ctx.dependencies(name)
	if err != nil {
		return err
	}
	if len(d.ApprovedEstimates) != approved {
		return fmt.Errorf("expected %d approved estimates, got %d", approved, len(d.ApprovedEstimates))
	}
	if len(d.OtherEstimates) != other {
		return fmt.Errorf("expected %d other estimates, got %d", other, len(d.OtherEstimates))
	}
	if len(d.Reservations) != reservations {
		return fmt.Errorf("expected %d reservations, got %d", reservations, len(d.Reservations))
	}
	return nil
}

func (ctx *dependencyContext) canDeleteShouldBe(name, want string) error {
	d, err := ctx.dependencies(name)
	if err != nil {
		return err
	}
	if d.CanDelete != (want == "can") {
		return fmt.Errorf("expected can_delete=%v, got %v", want == "can", d.CanDelete)
	}
	return nil
}

func (ctx *dependencyContext) iDelete(name string) error {
	return ctx.deleteWith(name, "")
}

func (ctx *dependencyContext) iDeleteWithOptions(name, options string) error {
	return ctx.deleteWith(name, options)
}

// deleteWith parses a comma separated option list such as
// "cancel estimates, remove line items, clear reservations, archive"
func (ctx *dependencyContext) deleteWith(name, options string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	cmd := &dependencyCommands.DeleteMaterialCommand{MaterialID: id}
	for _, opt := range strings.Split(options, ",") {
		switch strings.TrimSpace(opt) {
		case "":
		case "cancel estimates":
			cmd.CancelEstimates = true
		case "remove line items":
			cmd.RemoveEstimateLineItems = true
		case "clear reservations":
			cmd.ClearReservations = true
		case "archive":
			cmd.ArchiveInsteadOfDelete = true
		default:
			return fmt.Errorf("unknown delete option %q", opt)
		}
	}
	ctx.send(cmd)
	return nil
}

// stepShouldHaveAffected also reads the report of a delete whose final step failed
func (ctx *dependencyContext) stepShouldHaveAffected(step string, affected int) error {
	resp, ok := ctx.lastResponse.(*dependencyCommands.DeleteMaterialResponse)
	if !ok {
		if ctx.lastErr != nil {
			return fmt.Errorf("delete failed: %w", ctx.lastErr)
		}
		return fmt.Errorf("last operation was not a delete")
	}
	for _, s := range resp.Steps {
		if s.Step == step {
			if s.Affected != affected {
				return fmt.Errorf("expected step %s to affect %d rows, got %d", step, affected, s.Affected)
			}
			return nil
		}
	}
	return fmt.Errorf("step %s was not run", step)
}

func (ctx *dependencyContext) stepShouldHaveFailed(step string) error {
	resp, ok := ctx.lastResponse.(*dependencyCommands.DeleteMaterialResponse)
	if !ok {
		return fmt.Errorf("no delete report was returned")
	}
	for _, s := range resp.Steps {
		if s.Step == step {
			if s.Error == "" {
				return fmt.Errorf("expected step %s to fail", step)
			}
			return nil
		}
	}
	return fmt.Errorf("step %s was not run", step)
}

func (ctx *dependencyContext) materialShouldNoLongerExist(name string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	_, err = ctx.engine.Mediator.Send(context.Background(), &catalogQueries.GetMaterialQuery{ID: id})
	var notFound *catalog.ErrMaterialNotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("expected material %s to be gone, got err=%v", name, err)
	}
	return nil
}

func (ctx *dependencyContext) material(name string) (*catalogQueries.GetMaterialResponse, error) {
	id, err := ctx.materialID(name)
	if err != nil {
		return nil, err
	}
	resp, err := ctx.engine.Mediator.Send(context.Background(), &catalogQueries.GetMaterialQuery{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.(*catalogQueries.GetMaterialResponse), nil
}

func (ctx *dependencyContext) materialShouldBeNamed(name, want string) error {
	m, err := ctx.material(name)
	if err != nil {
		return err
	}
	if m.Material.Name != want {
		return fmt.Errorf("expected name %q, got %q", want, m.Material.Name)
	}
	return nil
}

func (ctx *dependencyContext) materialShouldBeInactive(name string) error {
	m, err := ctx.material(name)
	if err != nil {
		return err
	}
	if m.Material.IsActive {
		return fmt.Errorf("expected %s to be inactive", name)
	}
	return nil
}

// InitializeDependencyScenario registers dependency listing and deletion steps
func InitializeDependencyScenario(sc *godog.ScenarioContext) {
	dep := &dependencyContext{world: sharedWorld}

	sc.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		dep.estimates = 0
		return c, nil
	})

	sc.Step(`^an? (draft|sent|approved|rejected|cancelled) estimate using "([^"]*)"$`, dep.anEstimateUsing)
	sc.Step(`^the dependencies of "([^"]*)" should list (\d+) approved, (\d+) other estimates and (\d+) reservations?$`, dep.dependenciesShouldList)
	sc.Step(`^"([^"]*)" (can|cannot) be deleted$`, dep.canDeleteShouldBe)
	sc.Step(`^I delete "([^"]*)"$`, dep.iDelete)
	sc.Step(`^I delete "([^"]*)" with "([^"]*)"$`, dep.iDeleteWithOptions)
	sc.Step(`^step "([^"]*)" should have affected (\d+)$`, dep.stepShouldHaveAffected)
	sc.Step(`^step "([^"]*)" should have failed$`, dep.stepShouldHaveFailed)
	sc.Step(`^the material "([^"]*)" should no longer exist$`, dep.materialShouldNoLongerExist)
	sc.Step(`^the material "([^"]*)" should be named "([^"]*)"$`, dep.materialShouldBeNamed)
	sc.Step(`^the material "([^"]*)" should be inactive$`, dep.materialShouldBeInactive)
}
