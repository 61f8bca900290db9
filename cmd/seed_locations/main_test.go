package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestParseLayout_Latin1YDuplicados(t *testing.T) {
	src := "bodega;zona;pasillo;rack;nivel;posicion\n" +
		"bod-a;a;01;r1;;\n" +
		"BOD-A;A;01;R1;;\n" +
		"bod-b;Ñ;02;;;\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	rows, err := parseLayout(transform.NewReader(strings.NewReader(latin1), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BOD-A", rows[0].warehouse)
	assert.Equal(t, "A-01-R1", rows[0].fullCode)
	assert.Equal(t, "Ñ-02", rows[1].fullCode)
}

func TestParseLayout_SinZonaFalla(t *testing.T) {
	_, err := parseLayout(strings.NewReader("BOD-A;;01;;;\n"))
	assert.Error(t, err)
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var buf bytes.Buffer
	rows := []locationRow{{warehouse: "BOD'A", zone: "A", fullCode: "A"}}
	require.NoError(t, writeSQL(&buf, rows, func() string { return "id-1" }))
	out := buf.String()
	assert.Contains(t, out, "SELECT 'id-1', id, 'A'")
	assert.Contains(t, out, "WHERE upper(code) = 'BOD''A'")
	assert.Contains(t, out, "ON CONFLICT (warehouse_id, full_code) DO NOTHING;")
}
