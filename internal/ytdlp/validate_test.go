package ytdlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/@handle",
		"http://youtube.com/channel/UC123",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	for _, u := range valid {
		assert.True(t, IsValidURL(u), u)
	}

	invalid := []string{
		"",
		"youtube.com/@handle",
		"https://vimeo.com/123",
		"https://notyoutube.com/",
		"ftp://youtube.com/x",
	}
	for _, u := range invalid {
		assert.False(t, IsValidURL(u), u)
	}
}

func TestIsValidVideoID(t *testing.T) {
	assert.True(t, IsValidVideoID("dQw4w9WgXcQ"))
	assert.True(t, IsValidVideoID("a-b_c123456"))
	assert.False(t, IsValidVideoID("dQw4w9WgXc"))
	assert.False(t, IsValidVideoID("dQw4w9WgXcQQ"))
	assert.False(t, IsValidVideoID("dQw4w9WgX!Q"))
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeQuery("  hello world \n"))
	assert.Equal(t, "", SanitizeQuery("   "))
	assert.Len(t, SanitizeQuery(strings.Repeat("a", 600)), 500)

	multi := strings.Repeat("a", 499) + "é"
	got := SanitizeQuery(multi + "tail")
	assert.Equal(t, strings.Repeat("a", 499), got)
}

func TestVideosTabURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/@x/videos", videosTabURL("https://www.youtube.com/@x"))
	assert.Equal(t, "https://www.youtube.com/@x/videos", videosTabURL("https://www.youtube.com/@x/"))
	assert.Equal(t, "https://www.youtube.com/@x/videos", videosTabURL("https://www.youtube.com/@x/videos"))
}
