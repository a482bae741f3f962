package service

// Source indica de donde sale la respuesta de un turno.
type Source string

const (
	SourceMock  Source = "mock"
	SourceModel Source = "model"
)

// MockBandWidth es la cantidad de grupos consecutivos que usan respuestas mock.
const MockBandWidth = 8

// SourceSelector elige mock o modelo segun el numero de grupo.
type SourceSelector struct {
	start int
}

func NewSourceSelector(start int) SourceSelector {
	return SourceSelector{start: start}
}

func (s SourceSelector) Start() int {
	return s.start
}

// Select devuelve SourceMock cuando start <= group <= start+7.
func (s SourceSelector) Select(group int) Source {
	if group >= s.start && group <= s.start+MockBandWidth-1 {
		return SourceMock
	}
	return SourceModel
}
