package fountain

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	calls []string
}

func TestApp_addResources(t *testing.T) {
	app := NewAppBuilder().Build()

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Adding the same resource type twice is a programmer error.
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	// Non-pointer resources are rejected too.
	require.Panics(t, func() {
		app.addResources(MockResource1{})
	})
}

func TestApp_SystemDependencyInjection(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(&MockResource1{name: "injected"})

	var got string
	app.UseSystem(System(func(r *MockResource1) {
		got = r.name
	}))

	app.RunFrame()
	assert.Equal(t, "injected", got)
}

func TestApp_SystemUnknownDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource1) {}))

	require.Panics(t, func() {
		app.RunFrame()
	})
}

func TestApp_StageOrdering(t *testing.T) {
	app := NewAppBuilder().Build()
	trace := &MockResource2{}
	app.addResources(trace)

	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "finale")
	}).InStage(Finale))
	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "prelude")
	}).InStage(Prelude))
	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "update")
	}))

	app.RunFrame()

	assert.Equal(t, []string{"prelude", "update", "finale"}, trace.calls)
}

func TestApp_UseStageInsertsRelative(t *testing.T) {
	app := NewAppBuilder().Build()
	trace := &MockResource2{}
	app.addResources(trace)

	custom := Stage{Name: "Custom"}
	app.UseStage(custom, BeforeStage(Update))

	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "custom")
	}).InStage(custom))
	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "update")
	}))
	app.UseSystem(System(func(r *MockResource2) {
		r.calls = append(r.calls, "preupdate")
	}).InStage(PreUpdate))

	app.RunFrame()

	assert.Equal(t, []string{"preupdate", "custom", "update"}, trace.calls)

	require.Panics(t, func() {
		app.UseStage(Stage{Name: "Nope"}, AfterStage(Stage{Name: "Missing"}))
	})
}

func TestApp_QuitStopsRun(t *testing.T) {
	app := NewAppBuilder().Build()
	trace := &MockResource2{}
	app.addResources(trace)

	app.UseSystem(System(func(r *MockResource2, cmd *Commands) {
		r.calls = append(r.calls, "frame")
		if len(r.calls) == 3 {
			cmd.Quit()
		}
	}))

	app.Run()

	assert.Len(t, trace.calls, 3)
}

type installRecorder struct {
	installed *bool
}

func (m installRecorder) Install(app *App, cmd *Commands) {
	*m.installed = true
}

func TestAppBuilder_InstallsModules(t *testing.T) {
	installed := false
	app := NewAppBuilder().
		UseModule(installRecorder{installed: &installed}).
		Build()

	require.NotNil(t, app)
	assert.True(t, installed)
}
