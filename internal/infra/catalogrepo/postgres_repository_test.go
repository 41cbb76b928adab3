package catalogrepo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = r.values[i].(string)
		case **string:
			if v, ok := r.values[i].(string); ok {
				*target = &v
			}
		case *[]string:
			if v, ok := r.values[i].([]string); ok {
				*target = v
			}
		}
	}
	return nil
}

func TestScanRecordWithMaleOverride(t *testing.T) {
	row := fakeRow{values: []any{
		"cozy_rainy", "Cozy Rainy", "Cozy", "Rainy", "assets_img/cozy_rainy.jpg", "Beige / Brown",
		[]string{"Knit"}, []string{"Umbrella"}, "Warm layers.", nil,
		nil, []string{"Hoodie"}, nil, "Relaxed layers.",
	}}

	rec, err := scanRecord(row)
	require.NoError(t, err)
	require.Equal(t, mood.Cozy, rec.Mood)
	require.Equal(t, weather.Rainy, rec.Weather)
	require.Empty(t, rec.Reason)
	require.NotNil(t, rec.Male)
	require.Equal(t, []string{"Hoodie"}, rec.Male.Items)
	require.Equal(t, "Relaxed layers.", rec.Male.Description)
	require.Empty(t, rec.Male.Palette)
}

func TestScanRecordWithoutOverride(t *testing.T) {
	row := fakeRow{values: []any{
		"street_sunny", "Street Sunny", "Street", "Sunny", "assets_img/street_sunny.jpg", "Black / White",
		[]string{"Tee"}, []string{"Cap"}, "Bold.", "Because.",
		nil, nil, nil, nil,
	}}

	rec, err := scanRecord(row)
	require.NoError(t, err)
	require.Nil(t, rec.Male)
	require.Equal(t, "Because.", rec.Reason)
}
