package condense

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibcondense/internal/bibtex"
	"github.com/matsen/bibcondense/internal/policy"
	"github.com/matsen/bibcondense/internal/shortnames"
)

var testNames = shortnames.New(map[string]string{
	"Intl. Conf. on X":  "ICX",
	"Journal of Things": "J. Things",
})

func newEntry(entryType, key string, fields ...string) *bibtex.Entry {
	e := bibtex.NewEntry(entryType, key)
	for i := 0; i+1 < len(fields); i += 2 {
		e.Set(fields[i], fields[i+1])
	}
	return e
}

func fieldMap(e *bibtex.Entry) map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Name] = f.Value
	}
	return m
}

func TestEntry_InproceedingsFullFields(t *testing.T) {
	authors := []bibtex.Person{{First: "Ann", Last: "Author"}}
	e := newEntry("inproceedings", "Smith2020",
		"booktitle", "Intl. Conf. on X",
		"pages", "1-10",
		"title", "T",
		"year", "2020")
	e.SetPersons(bibtex.RoleAuthor, authors)

	c := New(testNames, policy.Default(), Options{})
	out, err := c.Entry(e)
	require.NoError(t, err)
	require.NotNil(t, out.Entry)

	assert.False(t, out.Unmapped)
	assert.False(t, out.Unrecognized)
	assert.Equal(t, map[string]string{
		"booktitle": "ICX",
		"pages":     "1-10",
		"title":     "T",
		"year":      "2020",
	}, fieldMap(out.Entry))
	assert.Equal(t, authors, out.Entry.PersonsFor(bibtex.RoleAuthor))

	// input untouched
	v, _ := e.Get("booktitle")
	assert.Equal(t, "Intl. Conf. on X", v)
}

func TestEntry_FullFieldsIsProjection(t *testing.T) {
	e := newEntry("article", "Brown2021",
		"title", "T",
		"journal", "Journal of Things",
		"volume", "3",
		"url", "https://example.org",
		"note", "extra")
	e.SetPersons(bibtex.RoleEditor, []bibtex.Person{{Last: "Ed"}})

	out, err := New(testNames, policy.Default(), Options{}).Entry(e)
	require.NoError(t, err)

	// every other field keeps its order and value; the venue moves last
	assert.Equal(t, []string{"title", "volume", "url", "note", "journal"}, out.Entry.FieldNames())
	for _, f := range e.Fields {
		got, ok := out.Entry.Get(f.Name)
		require.True(t, ok, f.Name)
		if f.Name == "journal" {
			assert.Equal(t, "J. Things", got)
		} else {
			assert.Equal(t, f.Value, got)
		}
	}
	assert.Equal(t, e.Persons, out.Entry.Persons)
}

func TestEntry_NoVenueTypeUntouched(t *testing.T) {
	// "journal" on a book is not a venue; it must not be looked up or replaced.
	e := newEntry("book", "Knuth1984",
		"title", "The TeXbook",
		"journal", "Journal of Things",
		"publisher", "Addison-Wesley")

	out, err := New(testNames, policy.Default(), Options{}).Entry(e)
	require.NoError(t, err)
	assert.False(t, out.Unmapped)
	assert.Equal(t, e.Fields, out.Entry.Fields)
}

func TestEntry_UnmappedVenue(t *testing.T) {
	e := newEntry("inproceedings", "k", "booktitle", "Unknown Venue", "title", "T")

	out, err := New(testNames, policy.Default(), Options{}).Entry(e)
	require.NoError(t, err)
	assert.True(t, out.Unmapped)
	assert.Equal(t, "Unknown Venue", out.UnmappedVenue)

	v, _ := out.Entry.Get("booktitle")
	assert.Equal(t, "Unknown Venue", v)
}

func TestEntry_EmptyVenueIsUnmapped(t *testing.T) {
	e := newEntry("article", "k", "title", "T", "journal", "")

	out, err := New(testNames, policy.Default(), Options{}).Entry(e)
	require.NoError(t, err)
	assert.True(t, out.Unmapped)
	assert.Equal(t, "", out.UnmappedVenue)
}

func TestEntry_MissingVenueField(t *testing.T) {
	e := newEntry("article", "NoJournal", "title", "T")

	for _, sel := range []bool{false, true} {
		_, err := New(testNames, policy.Default(), Options{SelectFields: sel}).Entry(e)

		var mvErr *MissingVenueFieldError
		require.True(t, errors.As(err, &mvErr), "select=%v err=%v", sel, err)
		assert.Equal(t, "journal", mvErr.Field)
		assert.Equal(t, "NoJournal", mvErr.Key)
	}
}

func TestEntry_UnknownType(t *testing.T) {
	e := newEntry("patent", "P1", "title", "T")

	// full-field mode: fatal
	_, err := New(testNames, policy.Default(), Options{}).Entry(e)
	var mvErr *MissingVenueFieldError
	require.True(t, errors.As(err, &mvErr))
	assert.Empty(t, mvErr.Field)
	assert.Contains(t, err.Error(), "patent")

	// select-fields mode: flagged
	out, err := New(testNames, policy.Default(), Options{SelectFields: true}).Entry(e)
	require.NoError(t, err)
	assert.True(t, out.Unrecognized)
	assert.Nil(t, out.Entry)
}

func TestEntry_SelectFieldsMisc(t *testing.T) {
	e := newEntry("misc", "Data2019", "title", "T", "year", "2019", "note", "dropped")
	e.SetPersons(bibtex.RoleAuthor, []bibtex.Person{{Last: "A"}})
	e.SetPersons(bibtex.RoleEditor, []bibtex.Person{{Last: "E"}})

	out, err := New(testNames, policy.Default(), Options{SelectFields: true}).Entry(e)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"title": "T",
		"year":  "2019",
		"doi":   "",
		"url":   "",
	}, fieldMap(out.Entry))
	assert.Equal(t, []bibtex.Person{{Last: "A"}}, out.Entry.PersonsFor(bibtex.RoleAuthor))
	_, hasEditor := out.Entry.Persons[bibtex.RoleEditor]
	assert.False(t, hasEditor)
}

func TestEntry_SelectFieldsExactSet(t *testing.T) {
	reg := policy.Default()
	c := New(testNames, reg, Options{SelectFields: true})

	tests := []struct {
		name  string
		entry *bibtex.Entry
	}{
		{"article", newEntry("article", "a", "journal", "Journal of Things", "title", "T", "abstract", "x", "url", "u", "pages", "1")},
		{"proceedings", newEntry("proceedings", "p", "booktitle", "Intl. Conf. on X", "publisher", "P", "address", "A")},
		{"phdthesis", newEntry("phdthesis", "t", "title", "T", "school", "S", "month", "May", "doi", "d")},
		{"unpublished", newEntry("unpublished", "u")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pol, _ := reg.Lookup(tt.entry.Type)

			out, err := c.Entry(tt.entry)
			require.NoError(t, err)

			var want []string
			for _, f := range pol.Required {
				if !bibtex.IsPersonRole(f) && f != pol.Venue {
					want = append(want, f)
				}
			}
			if pol.HasVenue() {
				want = append(want, pol.Venue)
			}
			assert.Equal(t, want, out.Entry.FieldNames())
		})
	}
}

func TestEntry_SelectFieldsKeepsRequiredEditors(t *testing.T) {
	e := newEntry("proceedings", "p", "booktitle", "Intl. Conf. on X", "title", "T")
	e.SetPersons(bibtex.RoleEditor, []bibtex.Person{{Last: "E"}})

	out, err := New(testNames, policy.Default(), Options{SelectFields: true}).Entry(e)
	require.NoError(t, err)
	assert.Equal(t, []bibtex.Person{{Last: "E"}}, out.Entry.PersonsFor(bibtex.RoleEditor))

	v, _ := out.Entry.Get("booktitle")
	assert.Equal(t, "ICX", v)
}

func TestEntry_Deterministic(t *testing.T) {
	e := newEntry("article", "a", "journal", "Journal of Things", "title", "T", "pages", "1")
	c := New(testNames, policy.Default(), Options{SelectFields: true})

	first, err := c.Entry(e)
	require.NoError(t, err)
	second, err := c.Entry(e)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEntry_MappedNameNeverInOutput(t *testing.T) {
	bib, err := bibtex.Parse(strings.NewReader(`
@article{a, title={T}, journal={Journal of Things}, year=2020}
@inproceedings{b, title={T}, booktitle={Intl.   Conf. on X}, year=2020}
`))
	require.NoError(t, err)

	res, err := New(testNames, policy.Default(), Options{}).Run(bib)
	require.NoError(t, err)

	text := bibtex.Format(res.Condensed)
	assert.NotContains(t, text, "Journal of Things")
	assert.NotContains(t, text, "Conf. on X")
	assert.Contains(t, text, "journal = {J. Things}")
	assert.Contains(t, text, "booktitle = {ICX}")
}
