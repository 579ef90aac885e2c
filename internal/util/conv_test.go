package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Intro to Machine Learning":  "intro-to-machine-learning",
		"  Python 101!  ":            "python-101",
		"C++ / Go -- Basics":         "c-go-basics",
		"Déjà vu":                    "deja-vu",
		"Café Basics":                "cafe-basics",
		"Résumé Writing 101":         "resume-writing-101",
		"Español para principiantes": "espanol-para-principiantes",
		"Ünïcödé   Ñame":             "unicode-name",
		"数据结构":                       "",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}

	long := Slugify(strings.Repeat("ab ", 120))
	assert.LessOrEqual(t, len(long), 200)
	assert.True(t, IsSlug(long))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 4, ParsePage("4"))
}

func TestNewPageHasNext(t *testing.T) {
	assert.True(t, NewPage(nil, 25, 1, 12).HasNext)
	assert.True(t, NewPage(nil, 25, 2, 12).HasNext)
	assert.False(t, NewPage(nil, 25, 3, 12).HasNext)
	assert.False(t, NewPage(nil, 24, 2, 12).HasNext)
}

func TestObjectName(t *testing.T) {
	name := ObjectName("payment_screenshots", "Receipt.PNG")
	assert.True(t, strings.HasPrefix(name, "payment_screenshots/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotEqual(t, name, ObjectName("payment_screenshots", "Receipt.PNG"))
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("a.JPG", AllowedImageExtensions))
	assert.False(t, HasAllowedExtension("a.exe", AllowedImageExtensions))
	assert.True(t, HasAllowedExtension("lesson.mp4", AllowedVideoExtensions))
}

func TestParseProbeOutput(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}],
	"format":{"duration":"125.4","size":"2048","format_name":"mov,mp4,m4a"}}`
	info, err := parseProbeOutput(out, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, "mov", info.Format)
	assert.Equal(t, int64(2048), info.Size)
	assert.Equal(t, 3, info.Minutes())

	_, err = parseProbeOutput("not json", 1)
	assert.Error(t, err)
}
