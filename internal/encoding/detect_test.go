package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payreminder/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Açıklama;Tutar\nKira ödemesi;12,50\nŞirket vergisi;3,00\n"
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1254(t *testing.T) {
	// "Açıklama;Tutar\n" with ç = 0xE7 and ı = 0xFD.
	input := []byte{
		'A', 0xE7, 0xFD, 'k', 'l', 'a', 'm', 'a', ';',
		'T', 'u', 't', 'a', 'r', '\n',
	}

	assert.Equal(t, "Açıklama;Tutar\n", readAll(t, input))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("due_date;amount\n")...)
	assert.Equal(t, "due_date;amount\n", readAll(t, input))
}

func TestNewUTF8Reader_UTF16LEBOM(t *testing.T) {
	// "ab\n" in UTF-16LE with BOM.
	input := []byte{0xFF, 0xFE, 'a', 0x00, 'b', 0x00, '\n', 0x00}
	assert.Equal(t, "ab\n", readAll(t, input))
}
