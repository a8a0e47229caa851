package widget

// Nop drops every broadcast. It is used when no bus is available.
type Nop struct{}

func (Nop) SendState(State) error      { return nil }
func (Nop) SendCover(string) error     { return nil }
func (Nop) SendPosition(float32) error { return nil }
func (Nop) SendMetaChanged(Meta) error { return nil }
