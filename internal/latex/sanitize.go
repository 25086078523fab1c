package latex

import (
	"regexp"
	"strings"
)

// Structural markers every generated document must carry. The start marker
// must open the document; the end marker must close it after trimming.
const (
	DocumentStartMarker = `\documentclass`
	DocumentEndMarker   = `\end{document}`
)

// figureRefReplacement is the neutral phrase substituted for figure
// cross-references once the figures themselves are stripped.
const figureRefReplacement = "the analysis"

var (
	includeGraphicsRe = regexp.MustCompile(`\\includegraphics(?:\[[^\]]*\])?\{[^}]*\}`)
	figureEnvRe       = regexp.MustCompile(`(?s)\\begin\{figure\*?\}.*?\\end\{figure\*?\}`)
	figureRefRe       = regexp.MustCompile(`[Ff]igure~?\\ref\{[^}]+\}`)
	figAnchorRefRe    = regexp.MustCompile(`\\ref\{fig:[^}]+\}`)
	figLabelRe        = regexp.MustCompile(`\\label\{fig:[^}]+\}`)
	placeholderImgRe  = regexp.MustCompile(`placeholder_[^\s{}]*\.(?:pdf|png|jpe?g)`)
	multiNewlineRe    = regexp.MustCompile(`\n\s*\n\s*\n+`)
	citePackageRe     = regexp.MustCompile(`\\usepackage\{cite\}\n?`)
	citeMacroRe       = regexp.MustCompile(`\\cite\{([^}]+)\}`)
	yearRemnantRe     = regexp.MustCompile(`\([0-9]{4}[a-z]?\)`)
)

// CleanTemplate strips image and figure constructs from the template and
// patches known formatting conflicts before the template is handed to the
// model as a formatting contract. Every transformation is idempotent and a
// no-op when its pattern is absent.
func CleanTemplate(tex string) string {
	tex = stripFigures(tex)

	// fancyhdr aborts the first pass with "headheight too small" unless the
	// height is declared explicitly.
	if strings.Contains(tex, `\pagestyle{fancy}`) && !strings.Contains(tex, `\setlength{\headheight}`) {
		tex = strings.Replace(tex,
			`\pagestyle{fancy}`,
			"\\pagestyle{fancy}\n\\setlength{\\headheight}{14.5pt}",
			1)
	}

	// cite and natbib cannot be loaded together. Keep natbib and force it
	// into numeric mode to match the numeric bibliography the prompt demands.
	if strings.Contains(tex, `\usepackage{natbib}`) {
		tex = citePackageRe.ReplaceAllString(tex, "")
		tex = strings.ReplaceAll(tex,
			`\usepackage{natbib}`,
			`\usepackage[numbers]{natbib}`)
	}

	return tex
}

// SanitizeOutput normalizes raw model text into a candidate document:
// code-fence unwrapping, image stripping, whitespace collapse, and
// bibliography repair, in that order. Callers must still run
// ValidateDocument on the result.
func SanitizeOutput(text string) string {
	text = stripCodeFence(text)
	text = RemoveImages(text)
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = repairBibliography(text)
	return strings.TrimSpace(text)
}

// ValidateDocument checks the sole structural invariant: the document
// starts with the document-class marker and, after trimming, ends with the
// document-end marker.
func ValidateDocument(tex string) error {
	if !strings.HasPrefix(tex, DocumentStartMarker) {
		return &ValidationError{Message: "output does not start with " + DocumentStartMarker}
	}
	if !strings.HasSuffix(strings.TrimSpace(tex), DocumentEndMarker) {
		return &ValidationError{Message: "output does not end with " + DocumentEndMarker}
	}
	return nil
}

// RemoveImages strips every image and figure construct the model may have
// produced: includegraphics commands, whole figure environments, figure
// cross-references (replaced by a neutral phrase), figure labels, and
// leftover placeholder image filenames.
func RemoveImages(tex string) string {
	tex = stripFigures(tex)
	tex = figLabelRe.ReplaceAllString(tex, "")
	tex = placeholderImgRe.ReplaceAllString(tex, "")
	return tex
}

// stripFigures applies the transform family shared by the template and
// output sanitizers: image commands, figure environments, and figure
// references.
func stripFigures(tex string) string {
	tex = includeGraphicsRe.ReplaceAllString(tex, "")
	tex = figureEnvRe.ReplaceAllString(tex, "")
	tex = figureRefRe.ReplaceAllString(tex, figureRefReplacement)
	tex = figAnchorRefRe.ReplaceAllString(tex, figureRefReplacement)
	return tex
}

// stripCodeFence drops a leading triple-backtick fence line and, when
// present, the matching trailing fence line.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(strings.TrimSpace(text), "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	// Replies often end with a newline after the closing fence, leaving a
	// trailing empty line, so scan past blanks to find the fence.
	last := len(lines)
	for last > 0 && strings.TrimSpace(lines[last-1]) == "" {
		last--
	}
	if last > 0 && strings.HasPrefix(strings.TrimSpace(lines[last-1]), "```") {
		lines = lines[:last-1]
	}
	return strings.Join(lines, "\n")
}

// repairBibliography fixes the bibliography issues models introduce most
// often: unescaped ampersands inside bibitem entries, undifferentiated
// \cite macros, and author-year remnants left over from the wrong citation
// style.
func repairBibliography(tex string) string {
	var b strings.Builder
	b.Grow(len(tex))

	idx := 0
	for {
		rel := strings.Index(tex[idx:], `\bibitem`)
		if rel < 0 {
			b.WriteString(tex[idx:])
			break
		}
		start := idx + rel
		b.WriteString(tex[idx:start])

		end := bibitemSpanEnd(tex, start)
		entry := tex[start:end]
		entry = escapeAmpersands(entry)
		entry = yearRemnantRe.ReplaceAllString(entry, "")
		b.WriteString(entry)
		idx = end
	}

	out := b.String()
	// Parenthetical numeric citations; \citep and \citet are left untouched
	// because the pattern requires the brace immediately after \cite.
	out = citeMacroRe.ReplaceAllString(out, `\citep{$1}`)
	return out
}

// bibitemSpanEnd returns the index just past the bibliography entry
// starting at start: the next \bibitem, the next blank line, or the
// bibliography's closing marker, whichever comes first.
func bibitemSpanEnd(tex string, start int) int {
	searchFrom := start + len(`\bibitem`)
	rest := tex[searchFrom:]

	end := len(tex)
	for _, marker := range []string{`\bibitem`, "\n\n", `\end{thebibliography}`} {
		if i := strings.Index(rest, marker); i >= 0 && searchFrom+i < end {
			end = searchFrom + i
		}
	}
	return end
}

// escapeAmpersands escapes every ampersand that is not already escaped.
// Re-applying it never double-escapes.
func escapeAmpersands(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && (i == 0 || s[i-1] != '\\') {
			b.WriteString(`\&`)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
