package service

import (
	"regexp"
	"strings"
)

// RefusalMessage es la respuesta fija cuando el primer mensaje queda fuera del tema.
const RefusalMessage = "❌ ERROR : Outside the scope of the task"

// DefaultTriggerWords es el vocabulario que habilita una conversacion nueva.
var DefaultTriggerWords = []string{
	"mobility", "low", "disability", "affordable", "design",
	"help", "disabled", "walk", "cheap",
}

var nonWord = regexp.MustCompile(`\W+`)

// ScopeGate filtra el mensaje de apertura de una conversacion.
type ScopeGate struct {
	triggers map[string]struct{}
}

func NewScopeGate(words ...string) *ScopeGate {
	if len(words) == 0 {
		words = DefaultTriggerWords
	}
	triggers := make(map[string]struct{}, len(words))
	for _, w := range words {
		triggers[strings.ToLower(w)] = struct{}{}
	}
	return &ScopeGate{triggers: triggers}
}

// InScope acepta el texto si alguno de sus tokens coincide exactamente con el vocabulario.
func (g *ScopeGate) InScope(text string) bool {
	for _, token := range nonWord.Split(strings.ToLower(text), -1) {
		if token == "" {
			continue
		}
		if _, ok := g.triggers[token]; ok {
			return true
		}
	}
	return false
}
