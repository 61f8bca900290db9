// seed_locations genera el script SQL de ubicaciones a partir del layout de racks
// exportado por el sistema anterior (CSV separado por ';' en ISO-8859-1).
//
// Columnas: bodega;zona;pasillo;rack;nivel;posicion  (los cuatro últimos pueden ir vacíos)
//
// Uso: go run ./cmd/seed_locations [ruta/layout.csv] [salida.sql]
// Por defecto lee layout.csv y escribe internal/infrastructure/postgres/seeds/locations.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

type locationRow struct {
	warehouse string
	zone      string
	aisle     string
	rack      string
	level     string
	position  string
	fullCode  string
}

func main() {
	csvPath := "layout.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seeds", "locations.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseLayout(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer layout: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows, func() string { return uuid.New().String() }); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ubicaciones\n", outPath, len(rows))
}

// parseLayout omite el encabezado y las filas duplicadas (misma bodega y código).
func parseLayout(r io.Reader) ([]locationRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]bool)
	var rows []locationRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "bodega") {
			continue
		}
		for len(rec) < 6 {
			rec = append(rec, "")
		}
		row := locationRow{
			warehouse: strings.ToUpper(strings.TrimSpace(rec[0])),
			zone:      strings.ToUpper(strings.TrimSpace(rec[1])),
			aisle:     strings.ToUpper(strings.TrimSpace(rec[2])),
			rack:      strings.ToUpper(strings.TrimSpace(rec[3])),
			level:     strings.ToUpper(strings.TrimSpace(rec[4])),
			position:  strings.ToUpper(strings.TrimSpace(rec[5])),
		}
		if row.warehouse == "" || row.zone == "" {
			return nil, fmt.Errorf("línea %d: bodega y zona son obligatorias", line)
		}
		row.fullCode = entity.BuildFullCode(row.zone, row.aisle, row.rack, row.level, row.position)
		key := row.warehouse + "|" + row.fullCode
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].warehouse != rows[j].warehouse {
			return rows[i].warehouse < rows[j].warehouse
		}
		return rows[i].fullCode < rows[j].fullCode
	})
	return rows, nil
}

func writeSQL(w io.Writer, rows []locationRow, newID func() string) error {
	if _, err := io.WriteString(w, "-- Ubicaciones generadas desde el layout de racks\n\n"); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w,
			"INSERT INTO locations (id, warehouse_id, zone, aisle, rack, level, position, full_code)\n"+
				"SELECT '%s', id, '%s', '%s', '%s', '%s', '%s', '%s' FROM warehouses WHERE upper(code) = '%s'\n"+
				"ON CONFLICT (warehouse_id, full_code) DO NOTHING;\n",
			newID(), escapeSQL(r.zone), escapeSQL(r.aisle), escapeSQL(r.rack), escapeSQL(r.level),
			escapeSQL(r.position), escapeSQL(r.fullCode), escapeSQL(r.warehouse))
		if err != nil {
			return err
		}
	}
	return nil
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
