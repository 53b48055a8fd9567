package fountain

import (
	"time"
)

// Clock tracks wall time per frame. Replicas ignore it for simulation
// and use the broadcast TimeDelta instead.
type Clock struct {
	Now time.Time
	Dt  time.Duration
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Clock{
		Now: time.Now(),
		Dt:  0,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(clock *Clock) {
	now := time.Now()

	clock.Dt = now.Sub(clock.Now)
	clock.Now = now
}
