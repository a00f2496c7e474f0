package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/model"
)

func TestMerge_ArtistPrecedence(t *testing.T) {
	shared := model.SharedFields{RawRecord: model.RawRecord{Artist: "A"}}
	record := model.RawRecord{Title: "Song", Artist: "B"}
	literal := model.RawRecord{Artist: "C"}

	tests := []struct {
		name       string
		literals   model.RawRecord
		precedence Precedence
		want       string
		origin     model.Origin
	}{
		{"literal wins over record", literal, PreferRecord, "C", model.OriginLiteral},
		{"literal wins over shared", literal, PreferShared, "C", model.OriginLiteral},
		{"record wins in per-record mode", model.RawRecord{}, PreferRecord, "B", model.OriginRecord},
		{"shared wins otherwise", model.RawRecord{}, PreferShared, "A", model.OriginShared},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.SetFamily(FamilyArtist, tt.precedence)

			got, err := New(opts).Merge([]model.RawRecord{record}, shared, tt.literals, nil)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Artist)
			assert.Equal(t, tt.origin, got[0].Origin(model.FieldArtist))
		})
	}
}

func TestMerge_BroadcastsSharedIntoMissingFields(t *testing.T) {
	shared := model.SharedFields{RawRecord: model.RawRecord{Album: "Abbey Road", Year: 1969, Artist: "The Beatles"}}
	records := []model.RawRecord{
		{Track: 1, Title: "Come Together"},
		{Track: 2, Title: "Something", Artist: "George"},
	}

	got, err := New(DefaultOptions()).Merge(records, shared, model.RawRecord{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Abbey Road", got[0].Album)
	assert.Equal(t, 1969, got[1].Year)
	assert.Equal(t, "The Beatles", got[0].Artist)
	assert.Equal(t, "George", got[1].Artist)
	assert.Equal(t, "The Beatles", got[0].AlbumArtist, "album artist follows artist")
	assert.Equal(t, model.OriginShared, got[0].Origin(model.FieldAlbumArtist))
	assert.Equal(t, "George", got[1].AlbumArtist)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
}

func TestMerge_NoMatchArtist(t *testing.T) {
	opts := DefaultOptions()
	opts.MatchArtist = false

	got, err := New(opts).Merge([]model.RawRecord{{Title: "Song", Artist: "A"}}, model.SharedFields{}, model.RawRecord{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got[0].AlbumArtist)
}

func TestMerge_RequiredFieldIsNotBroadcast(t *testing.T) {
	shared := model.SharedFields{RawRecord: model.RawRecord{Title: "Everything"}}
	records := []model.RawRecord{{Track: 1, Title: "One"}, {Track: 2}}

	_, err := New(DefaultOptions()).Merge(records, shared, model.RawRecord{}, nil)

	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "record 2 has no title")
}

func TestMerge_OptionalFieldBroadcast(t *testing.T) {
	opts := DefaultOptions()
	opts.Required = map[model.Field]bool{}
	shared := model.SharedFields{RawRecord: model.RawRecord{Title: "Everything"}}

	got, err := New(opts).Merge([]model.RawRecord{{Track: 1}}, shared, model.RawRecord{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Everything", got[0].Title)
}

func TestMerge_DuplicateRequiredValue(t *testing.T) {
	records := []model.RawRecord{{Title: "Intro"}, {Title: "Song"}, {Title: "intro"}}

	_, err := New(DefaultOptions()).Merge(records, model.SharedFields{}, model.RawRecord{}, nil)

	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "records 1 and 3")
}

func TestMerge_DuplicateFileBinding(t *testing.T) {
	records := []model.RawRecord{{Title: "A", File: "x.mp3"}, {Title: "B", File: "x.mp3"}}

	_, err := New(DefaultOptions()).Merge(records, model.SharedFields{}, model.RawRecord{}, nil)

	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestMerge_LiteralRequiredWithManyRecords(t *testing.T) {
	records := []model.RawRecord{{Title: "A"}, {Title: "B"}}

	_, err := New(DefaultOptions()).Merge(records, model.SharedFields{}, model.RawRecord{Title: "C"}, nil)

	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "cannot apply to 2 records")
}

func TestMerge_LiteralRequiredWithSingleRecord(t *testing.T) {
	got, err := New(DefaultOptions()).Merge([]model.RawRecord{{Track: 4}}, model.SharedFields{}, model.RawRecord{Title: "Only"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Only", got[0].Title)
	assert.Equal(t, 4, got[0].Track)
}

func TestMerge_SharedOnly(t *testing.T) {
	shared := model.SharedFields{RawRecord: model.RawRecord{Album: "Live", Title: "ignored"}}
	files := []string{"/m/b.mp3", "/m/a.mp3"}

	got, err := New(DefaultOptions()).Merge(nil, shared, model.RawRecord{Genre: "Rock"}, files)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "/m/a.mp3", got[0].File)
	assert.Equal(t, "/m/b.mp3", got[1].File)
	for _, rec := range got {
		assert.True(t, rec.Forced)
		assert.Equal(t, "Live", rec.Album)
		assert.Equal(t, "Rock", rec.Genre)
		assert.Empty(t, rec.Title, "required fields are never broadcast")
	}
}

func TestMerge_SharedOnlyErrors(t *testing.T) {
	m := New(DefaultOptions())
	var cfgErr *model.ConfigurationError

	_, err := m.Merge(nil, model.SharedFields{}, model.RawRecord{}, nil)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = m.Merge(nil, model.SharedFields{}, model.RawRecord{Title: "T"}, []string{"a.mp3", "b.mp3"})
	assert.ErrorAs(t, err, &cfgErr)

	got, err := m.Merge([]model.RawRecord{{}}, model.SharedFields{}, model.RawRecord{Title: "T"}, []string{"a.mp3"})
	require.NoError(t, err)
	assert.Equal(t, "T", got[0].Title)
}

func TestMerge_Deterministic(t *testing.T) {
	records := []model.RawRecord{{Track: 2, Title: "B"}, {Track: 1, Title: "A"}, {Track: 3, Title: "C"}}
	shared := model.SharedFields{RawRecord: model.RawRecord{Artist: "X"}}
	m := New(DefaultOptions())

	first, err := m.Merge(records, shared, model.RawRecord{}, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.Merge(records, shared, model.RawRecord{}, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "B", first[0].Title, "source order is kept")
}

func TestShared(t *testing.T) {
	shared, err := Shared([]model.RawRecord{{}, {Album: "X"}})
	require.NoError(t, err)
	assert.Equal(t, "X", shared.Album)

	shared, err = Shared(nil)
	require.NoError(t, err)
	assert.True(t, shared.IsEmpty())

	_, err = Shared([]model.RawRecord{{Album: "X"}, {Album: "Y"}})
	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestParseFamily(t *testing.T) {
	fields, err := ParseFamily("artist")
	require.NoError(t, err)
	assert.Equal(t, FamilyArtist, fields)

	fields, err = ParseFamily("genre")
	require.NoError(t, err)
	assert.Equal(t, []model.Field{model.FieldGenre}, fields)

	_, err = ParseFamily("nope")
	assert.Error(t, err)
}

func TestOptions_Describe(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "title=required", opts.Describe())

	opts.SetFamily([]model.Field{model.FieldAlbum}, PreferShared)
	assert.Equal(t, "album=shared title=required", opts.Describe())
}
