package softgl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gfx/backend/gl"
	"github.com/gogpu/gfx/internal/cache"
)

// declaration is a global variable found in GLSL source.
type declaration struct {
	qualifier string
	typ       string
	name      string
	count     int
}

type shader struct {
	kind     gl.Enum
	source   string
	compiled bool
	log      string
	decls    []declaration
	deleted  bool
	attached int
}

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	mainFunc     = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(void)?\s*\)`)
	layoutPrefix = regexp.MustCompile(`^layout\s*\([^)]*\)\s*`)
)

var ignoredWords = map[string]bool{
	"lowp": true, "mediump": true, "highp": true, "flat": true, "smooth": true,
	"noperspective": true, "centroid": true, "invariant": true,
}

// scanResult is a compile outcome. Declarations are shared between
// shaders with identical source and must not be modified.
type scanResult struct {
	decls []declaration
	err   error
}

// scans memoizes compileGLSL by source text.
var scans = cache.New[string, scanResult](256)

// compileGLSL scans src for global declarations. It reports the errors a
// driver would for sources it cannot possibly compile.
func compileGLSL(src string) ([]declaration, error) {
	r := scans.GetOrCreate(src, func() scanResult {
		decls, err := scanGLSL(src)
		return scanResult{decls, err}
	})
	return r.decls, r.err
}

func scanGLSL(src string) ([]declaration, error) {
	src = blockComment.ReplaceAllString(src, " ")
	src = lineComment.ReplaceAllString(src, "")
	var body strings.Builder
	for n, line := range strings.Split(src, "\n") {
		t := strings.TrimSpace(line)
		if msg, ok := strings.CutPrefix(t, "#error"); ok {
			return nil, fmt.Errorf("ERROR: 0:%d: '#error' : %s", n+1, strings.TrimSpace(msg))
		}
		if strings.HasPrefix(t, "#") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	text := body.String()
	if !mainFunc.MatchString(text) {
		return nil, fmt.Errorf("ERROR: 0:1: 'main' : function not defined")
	}

	var decls []declaration
	depth, start := 0, 0
	flush := func(end int) {
		stmt := layoutPrefix.ReplaceAllString(strings.TrimSpace(text[start:end]), "")
		start = end + 1
		if stmt == "" || strings.ContainsAny(stmt, "{}()") {
			return
		}
		decls = append(decls, parseDeclaration(stmt)...)
	}
	for i, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("ERROR: 0:%d: '}' : syntax error", lineOf(text, i))
			}
			if depth == 0 {
				start = i + 1
			}
		case ';':
			if depth == 0 {
				flush(i)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("ERROR: 0:%d: '' : unexpected end of file", lineOf(text, len(text)))
	}
	return decls, nil
}

func lineOf(text string, i int) int { return strings.Count(text[:i], "\n") + 1 }

// parseDeclaration handles "uniform highp vec4 a, b[4]" style statements.
func parseDeclaration(stmt string) []declaration {
	var words []string
	for _, w := range strings.Fields(strings.ReplaceAll(stmt, ",", " , ")) {
		if !ignoredWords[w] {
			words = append(words, w)
		}
	}
	if len(words) < 3 {
		return nil
	}
	q := words[0]
	switch q {
	case "attribute", "in", "uniform", "varying", "out":
	default:
		return nil
	}
	typ := words[1]
	var decls []declaration
	var name strings.Builder
	emit := func() {
		if name.Len() == 0 {
			return
		}
		decls = append(decls, newDeclaration(q, typ, name.String()))
		name.Reset()
	}
	for _, w := range words[2:] {
		if w == "," {
			emit()
			continue
		}
		name.WriteString(w)
	}
	emit()
	return decls
}

func newDeclaration(q, typ, name string) declaration {
	d := declaration{qualifier: q, typ: typ, name: name, count: 1}
	if i := strings.IndexByte(name, '['); i > 0 {
		d.name = name[:i]
		n, err := strconv.Atoi(strings.Trim(name[i:], "[] "))
		if err == nil && n > 0 {
			d.count = n
		}
	}
	return d
}

// samplerTarget returns the texture target a sampler type reads.
func samplerTarget(typ string) (gl.Enum, bool) {
	switch typ {
	case "sampler2D", "sampler2DShadow":
		return gl.TEXTURE_2D, true
	case "sampler2DArray", "sampler2DArrayShadow":
		return gl.TEXTURE_2D_ARRAY, true
	case "sampler3D":
		return gl.TEXTURE_3D, true
	case "samplerCube", "samplerCubeShadow":
		return gl.TEXTURE_CUBE_MAP, true
	}
	return 0, false
}
