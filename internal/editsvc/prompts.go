package editsvc

import (
	"bytes"
	"embed"
	"image"
	"sync"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var (
	promptOnce sync.Once
	promptTmpl *template.Template
)

func parsePrompts() {
	promptTmpl = template.Must(template.New("").ParseFS(promptFS, "prompts/*.tmpl"))
}

type promptData struct {
	Instruction string
	X, Y        int
}

func renderPrompt(name, instruction string, at image.Point) (string, error) {
	promptOnce.Do(parsePrompts)
	var buf bytes.Buffer
	if err := promptTmpl.ExecuteTemplate(&buf, name, promptData{Instruction: instruction, X: at.X, Y: at.Y}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
