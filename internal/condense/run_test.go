package condense

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibcondense/internal/bibtex"
	"github.com/matsen/bibcondense/internal/policy"
)

func parseBib(t *testing.T, src string) *bibtex.Bibliography {
	t.Helper()
	bib, err := bibtex.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return bib
}

func TestRun_Success(t *testing.T) {
	bib := parseBib(t, `
@book{z, title={Book}, year=2000}
@article{a, title={T}, journal={Journal of Things}, year=2020}
@inproceedings{m, title={T}, booktitle={Intl. Conf. on X}, year=2021}
`)

	res, err := New(testNames, policy.Default(), Options{}).Run(bib)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"z", "a", "m"}, res.Condensed.Keys())
	assert.Empty(t, res.UnmappedVenues)
	assert.Equal(t, 0, res.Unrecognized.Len())
}

func TestRun_UnmappedVenuesAggregated(t *testing.T) {
	bib := parseBib(t, `
@inproceedings{a, title={T}, booktitle={Unknown Venue}}
@article{b, title={T}, journal={Journal of Things}}
@article{c, title={T}, journal={Another Journal}}
@inproceedings{d, title={T}, booktitle={Unknown Venue}}
@incollection{e, title={T}, booktitle={Third One}}
`)

	res, err := New(testNames, policy.Default(), Options{}).Run(bib)

	var uvErr *UnmappedVenueError
	require.True(t, errors.As(err, &uvErr))
	want := []string{"Unknown Venue", "Another Journal", "Third One"}
	assert.Equal(t, want, uvErr.Venues)
	assert.Contains(t, err.Error(), "3 venue names")

	// the pass still completed
	require.NotNil(t, res)
	assert.Equal(t, want, res.UnmappedVenues)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 5, res.Condensed.Len())
}

func TestRun_EmptyVenueFails(t *testing.T) {
	bib := parseBib(t, `
@article{a, title={T}, journal={}}
@inproceedings{b, title={T}, booktitle={   }}
@article{c, title={T}, journal={Journal of Things}}
`)

	res, err := New(testNames, policy.Default(), Options{}).Run(bib)

	var uvErr *UnmappedVenueError
	require.True(t, errors.As(err, &uvErr))
	assert.Equal(t, []string{""}, uvErr.Venues)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Condensed.Len())
}

func TestRun_MissingVenueFieldStopsImmediately(t *testing.T) {
	bib := parseBib(t, `
@inproceedings{a, title={T}, booktitle={Unknown Venue}}
@article{broken, title={T}}
@article{c, title={T}, journal={Never Seen}}
`)

	res, err := New(testNames, policy.Default(), Options{}).Run(bib)
	assert.Nil(t, res)

	var mvErr *MissingVenueFieldError
	require.True(t, errors.As(err, &mvErr))
	assert.Equal(t, "broken", mvErr.Key)
}

func TestRun_UnrecognizedInSelectMode(t *testing.T) {
	bib := parseBib(t, `
@patent{p, title={T}, number={123}, extra={kept}}
@misc{m, title={T}, howpublished={web}}
`)

	res, err := New(testNames, policy.Default(), Options{SelectFields: true}).Run(bib)
	require.NoError(t, err)

	assert.Equal(t, []string{"m"}, res.Condensed.Keys())
	assert.Equal(t, []string{"p"}, res.Unrecognized.Keys())

	orig, _ := bib.Get("p")
	got, _ := res.Unrecognized.Get("p")
	assert.Equal(t, orig, got)
}

func TestRun_UnknownTypeFatalInFullMode(t *testing.T) {
	bib := parseBib(t, `@patent{p, title={T}}`)

	_, err := New(testNames, policy.Default(), Options{}).Run(bib)
	var mvErr *MissingVenueFieldError
	assert.True(t, errors.As(err, &mvErr))
}

func TestRun_CustomPolicy(t *testing.T) {
	venue := "howpublished"
	reg, err := policy.Default().With(map[string]policy.Override{
		"online": {Extra: []string{"url"}, Venue: &venue},
	})
	require.NoError(t, err)

	bib := parseBib(t, `@online{o, title={T}, howpublished={Journal of Things}, url={u}, note={n}}`)

	res, err := New(testNames, reg, Options{SelectFields: true}).Run(bib)
	require.NoError(t, err)

	o, ok := res.Condensed.Get("o")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "year", "url", "howpublished"}, o.FieldNames())
	v, _ := o.Get("howpublished")
	assert.Equal(t, "J. Things", v)
}
