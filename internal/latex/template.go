package latex

import "os"

// LoadTemplate reads the LaTeX template that serves as the formatting
// contract for generation. A missing template is a configuration error,
// never retried.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &TemplateError{Path: path, Cause: err}
	}
	return string(data), nil
}
