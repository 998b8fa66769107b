package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"mask.png":             ".png",
		"photo.PNG":            ".PNG",
		"archive.tar.gz":       ".gz",
		"mask":                 "",
		".env":                 "",
		"trailing.":            "",
		`C:\Users\me\mask.jpg`: ".jpg",
		"dir/sub/file.webp":    ".webp",
		"":                     "",
	}
	for input, want := range tests {
		assert.Equal(t, want, FileExtension(input), input)
	}
}

func TestNameFromFilename(t *testing.T) {
	assert.Equal(t, "portrait v2", NameFromFilename("flows/portrait v2.json"))
	assert.Equal(t, "flow", NameFromFilename("flow.yaml"))
	assert.Equal(t, "", NameFromFilename(""))
	assert.Equal(t, ".env", NameFromFilename(".env"))
}

func TestIsYAMLFile(t *testing.T) {
	assert.True(t, IsYAMLFile("a.yaml"))
	assert.True(t, IsYAMLFile("a.YML"))
	assert.False(t, IsYAMLFile("a.json"))
	assert.False(t, IsYAMLFile("yaml"))
}

func TestContentTypeByExtension(t *testing.T) {
	assert.Equal(t, "image/png", ContentTypeByExtension("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentTypeByExtension("a.jpeg"))
	assert.Equal(t, "image/svg+xml", ContentTypeByExtension("focal.svg"))
	assert.Equal(t, "application/octet-stream", ContentTypeByExtension("a.bin"))
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("mask"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Checksum([]byte("mask")))
	assert.NotEqual(t, a, Checksum([]byte("mask2")))
}

func TestKeyedMutex(t *testing.T) {
	km := NewKeyedMutex()

	var a, b int
	counters := map[string]*int{"a": &a, "b": &b}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		key := "a"
		if i%2 == 1 {
			key = "b"
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			unlock := km.Lock(key)
			defer unlock()
			*counters[key]++
		}(key)
	}
	wg.Wait()

	assert.Equal(t, 50, a)
	assert.Equal(t, 50, b)
	assert.Zero(t, km.Len(), "released keys are dropped")
}
