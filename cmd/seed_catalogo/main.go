// seed_catalogo genera el script SQL que puebla medicamentos y almacenes
// a partir de un catálogo XML (típicamente exportado en ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalogo [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual.
// Escribe: migrations/002_seed_catalogo.sql
//
// Formato esperado:
//
//	<catalogo>
//	  <medicamentos><medicamento codigo="MED-001" nombre="..." presentacion="..."/></medicamentos>
//	  <almacenes><almacen id="ALM-1" nombre="..." direccion="..."/></almacenes>
//	</catalogo>
//
// Los almacenes sin id reciben un UUID.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type medicamento struct {
	codigo, nombre, presentacion string
}

type almacen struct {
	id, nombre, direccion string
}

type catalogo struct {
	medicamentos []medicamento
	almacenes    []almacen
}

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalogo(f, func() string { return uuid.New().String() })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "migrations", "002_seed_catalogo.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, cat, filepath.Base(xmlPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d medicamentos, %d almacenes\n", outPath, len(cat.medicamentos), len(cat.almacenes))
}

// charsetReader acepta ISO-8859-1 además de UTF-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(charset) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	}
	return input, nil
}

func parseCatalogo(r io.Reader, newID func() string) (*catalogo, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, err
	}
	root := doc.SelectElement("catalogo")
	if root == nil {
		return nil, errors.New("falta el elemento raíz <catalogo>")
	}

	cat := &catalogo{}
	seen := map[string]bool{}
	for _, el := range root.FindElements("./medicamentos/medicamento") {
		m := medicamento{
			codigo:       strings.TrimSpace(el.SelectAttrValue("codigo", "")),
			nombre:       strings.TrimSpace(el.SelectAttrValue("nombre", "")),
			presentacion: strings.TrimSpace(el.SelectAttrValue("presentacion", "")),
		}
		if m.codigo == "" || m.nombre == "" {
			continue
		}
		if seen[m.codigo] {
			return nil, fmt.Errorf("medicamento %s duplicado", m.codigo)
		}
		seen[m.codigo] = true
		cat.medicamentos = append(cat.medicamentos, m)
	}
	sort.Slice(cat.medicamentos, func(i, j int) bool { return cat.medicamentos[i].codigo < cat.medicamentos[j].codigo })

	for _, el := range root.FindElements("./almacenes/almacen") {
		a := almacen{
			id:        strings.TrimSpace(el.SelectAttrValue("id", "")),
			nombre:    strings.TrimSpace(el.SelectAttrValue("nombre", "")),
			direccion: strings.TrimSpace(el.SelectAttrValue("direccion", "")),
		}
		if a.nombre == "" {
			continue
		}
		if a.id == "" {
			a.id = newID()
		}
		cat.almacenes = append(cat.almacenes, a)
	}
	return cat, nil
}

func writeSQL(w io.Writer, cat *catalogo, origen string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de medicamentos y almacenes\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", origen)

	if len(cat.medicamentos) > 0 {
		b.WriteString("INSERT INTO medicamentos (codigo, nombre, presentacion) VALUES\n")
		for i, m := range cat.medicamentos {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s')", escapeSQL(m.codigo), escapeSQL(m.nombre), escapeSQL(m.presentacion))
			b.WriteString(sep(i, len(cat.medicamentos)))
		}
		b.WriteString("ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre, presentacion = EXCLUDED.presentacion;\n\n")
	}

	if len(cat.almacenes) > 0 {
		b.WriteString("INSERT INTO almacenes (id, nombre, direccion) VALUES\n")
		for i, a := range cat.almacenes {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s')", escapeSQL(a.id), escapeSQL(a.nombre), escapeSQL(a.direccion))
			b.WriteString(sep(i, len(cat.almacenes)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET nombre = EXCLUDED.nombre, direccion = EXCLUDED.direccion;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
