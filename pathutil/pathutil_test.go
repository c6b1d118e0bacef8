package pathutil

import "testing"

import "github.com/stretchr/testify/assert"

func TestBasename(t *testing.T) {
	assert.Equal(t, "bar", Basename("/foo/bar"))
	assert.Equal(t, "bar", Basename("bar"))
	assert.Equal(t, "", Basename("/foo/"))
}

func TestDirname(t *testing.T) {
	assert.Equal(t, "/foo/", Dirname("/foo/bar"))
	assert.Equal(t, "", Dirname("bar"))
	assert.Equal(t, "/foo/", Dirname("/foo/"))
}

func TestEncodeName(t *testing.T) {
	assert.Equal(t, "simple_name", EncodeName("simple_name"))
	assert.Equal(t, "a%20b", EncodeName("a b"))
	assert.Equal(t, "url_encoding_group%20%21%2A%27%28%29%3B%3A%40%26%3D%2B%24%2C%3F%23%5B%5D-.%3C%3E%5C%5E%60%7B%7D%7C~",
		EncodeName("url_encoding_group !*'();:@&=+$,?#[]-.<>\\^`{}|~"))
}
