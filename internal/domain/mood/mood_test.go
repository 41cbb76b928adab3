package mood

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStyleForKnownEmotions(t *testing.T) {
	expected := map[Emotion]Style{
		Happy:   Active,
		Neutral: Minimal,
		Sad:     Cozy,
		Angry:   Street,
	}
	for _, e := range Emotions() {
		style, ok := StyleFor(e)
		require.True(t, ok, e)
		require.Equal(t, expected[e], style)
	}
}

func TestStyleForUnknownEmotion(t *testing.T) {
	style, ok := StyleFor("surprised")
	require.False(t, ok)
	require.Empty(t, style)
}

func TestFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  Emotion
		ok    bool
	}{
		{label: "Happy", want: Happy, ok: true},
		{label: "class 2 - SAD face", want: Sad, ok: true},
		{label: "angry", want: Angry, ok: true},
		{label: "Neutral", want: Neutral, ok: true},
		{label: "surprised", ok: false},
		{label: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := FromLabel(tc.label)
		require.Equal(t, tc.ok, ok, tc.label)
		require.Equal(t, tc.want, got, tc.label)
	}
}

func TestParseEmotionAndStyle(t *testing.T) {
	e, ok := ParseEmotion(" Happy ")
	require.True(t, ok)
	require.Equal(t, Happy, e)

	_, ok = ParseEmotion("bored")
	require.False(t, ok)

	s, ok := ParseStyle("street")
	require.True(t, ok)
	require.Equal(t, Street, s)
}

func TestDisplayLabel(t *testing.T) {
	require.Equal(t, "🙂 Happy", DisplayLabel("happy"))
	require.Equal(t, "😐 Neutral", DisplayLabel("something else"))
}
