package bibtex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicEntries(t *testing.T) {
	src := `
% A leading comment line
@Article{Smith2020-ab,
  author = {Smith, John and Doe, Jane},
  Title  = {A {Deep} Look},
  year   = 2020,
  journal = "Nature",
}

@phdthesis{lee2019,
  author = {Lee, Ann},
  title = {Thesis}
}
`
	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "article", first.Type)
	assert.Equal(t, "Smith2020-ab", first.Key)
	assert.Equal(t, 3, first.Line)
	assert.Equal(t, "Smith, John and Doe, Jane", first.Get("author"))
	assert.Equal(t, "A {Deep} Look", first.Get("title"))
	assert.Equal(t, "A {Deep} Look", first.Get("TITLE"))
	assert.Equal(t, "2020", first.Get("year"))
	assert.Equal(t, "Nature", first.Get("journal"))
	assert.Equal(t, "", first.Get("doi"))

	assert.Equal(t, "phdthesis", entries[1].Type)
	assert.Equal(t, "lee2019", entries[1].Key)
	assert.Equal(t, "Thesis", entries[1].Get("title"))
}

func TestParse_PreservesNewlinesInValues(t *testing.T) {
	src := "@misc{k,\n  author = {Alpha Beta and\n    Gamma Delta},\n}\n"

	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Alpha Beta and\n    Gamma Delta", entries[0].Get("author"))
}

func TestParse_StringMacrosAndConcatenation(t *testing.T) {
	src := `
@string{conf = "Conference on Systems"}
@STRING(short = {CoS})
@inproceedings{k1,
  booktitle = "Proc. " # conf # { (} # short # {)},
  month = jan,
}
`
	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Proc. Conference on Systems (CoS)", e.Get("booktitle"))
	assert.Equal(t, "January", e.Get("month"))
}

func TestParse_SkipsCommentsAndPreamble(t *testing.T) {
	src := `
@comment{ This has {nested} braces and @article{fake, title={no}} }
@preamble{ "\newcommand{\noop}[1]{}" }
Contact: someone@example.org for corrections.
@book(b1,
  title = {Real}
)
`
	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "book", entries[0].Type)
	assert.Equal(t, "b1", entries[0].Key)
	assert.Equal(t, "Real", entries[0].Get("title"))
}

func TestParse_EntryWithoutFieldsAndEmptyKey(t *testing.T) {
	src := "@misc{onlykey}\n@misc{,\n title = {No key}}\n"

	entries, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "onlykey", entries[0].Key)
	assert.Empty(t, entries[0].Fields)
	assert.Equal(t, "", entries[1].Key)
	assert.Equal(t, "No key", entries[1].Get("title"))
}

func TestParse_RepeatedFieldLastWins(t *testing.T) {
	entries, err := Parse(strings.NewReader("@misc{k, note = {one}, note = {two}}"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "two", entries[0].Get("note"))
}

func TestParse_PreservesNonASCII(t *testing.T) {
	entries, err := Parse(strings.NewReader("@misc{k, author = {Jürgen Müller and 李 雷}}"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jürgen Müller and 李 雷", entries[0].Get("author"))
}

func TestParse_Empty(t *testing.T) {
	entries, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "unterminated entry",
			src:      "\n@article{k,\n  title = {T},\n",
			wantLine: 2,
			wantMsg:  "unterminated @article entry",
		},
		{
			name:     "unterminated braced value",
			src:      "@article{k,\n  title = {T\n",
			wantLine: 2,
			wantMsg:  "unterminated field value",
		},
		{
			name:     "missing equals",
			src:      "@article{k,\n  title {T}\n}",
			wantLine: 2,
			wantMsg:  "expected '=' after field \"title\"",
		},
		{
			name:     "missing comma between fields",
			src:      "@article{k,\n  title = {T}\n  year = 2020\n}",
			wantLine: 3,
			wantMsg:  "expected ',' or '}' after field \"title\"",
		},
		{
			name:     "missing key separator",
			src:      "@article{k title = {T}}",
			wantLine: 1,
			wantMsg:  "expected ',' after citation key \"k\"",
		},
		{
			name:     "undefined macro",
			src:      "@article{k,\n  note = undefined,\n}",
			wantLine: 2,
			wantMsg:  "undefined macro \"undefined\"",
		},
		{
			name:     "bare token that is not a number",
			src:      "@article{k,\n  title = {T},\n  year = 2020a,\n}",
			wantLine: 3,
			wantMsg:  "undefined macro \"2020a\"",
		},
		{
			name:     "page range without braces",
			src:      "@article{k, pages = 1--10}",
			wantLine: 1,
			wantMsg:  "undefined macro \"1--10\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "error %v is not a *ParseError", err)
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("@misc{a}\n@misc{b}\n"), 0644))

	entries, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.bib"))
	assert.True(t, os.IsNotExist(err))
}
