package fountain

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Quit asks the frame loop to stop after the current frame.
func (cmd *Commands) Quit() *Commands {
	cmd.app.requestQuit()
	return cmd
}
