package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/warehouse-go/test/bdd/steps"
	"github.com/andrescamacho/warehouse-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// First registration wins in godog, so the shared world steps go first
	steps.InitializeInventoryScenario(sc)
	steps.InitializeReservationScenario(sc)
	steps.InitializeDeliveryScenario(sc)
	steps.InitializeDependencyScenario(sc)
}

func TestMain(m *testing.M) {
	// One migrated database for the whole suite; every scenario truncates it
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}
	code := m.Run()
	helpers.CloseSharedTestDB()
	os.Exit(code)
}
