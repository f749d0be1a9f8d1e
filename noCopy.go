package lockstep

// noCopy is embedded into types holding state that must not be duplicated.
// "go vet" reports copies of any struct embedding it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
