package blob

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.UnixMilli(1717000000123)

func TestObjectPath(t *testing.T) {
	p, err := ObjectPath(FolderStudents, "my photo.jpg", fixed)
	require.NoError(t, err)
	assert.Equal(t, "students/1717000000123_my_photo.jpg", p)

	p, err = ObjectPath(FolderHomework, `C:\docs\..\week 1.pdf`, fixed)
	require.NoError(t, err)
	assert.Equal(t, "homework/1717000000123_week_1.pdf", p)

	_, err = ObjectPath("secrets", "x", fixed)
	assert.ErrorIs(t, err, ErrUnknownFolder)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "file", CleanName(""))
	assert.Equal(t, "a.png", CleanName("../../a.png"))
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "http://localhost:8081/files/")
	l.now = func() time.Time { return fixed }

	url, err := l.Put(context.Background(), FolderTeachers, "t.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081/files/teachers/1717000000123_t.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "teachers", "1717000000123_t.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, fmt.Errorf("connection reset") }

func TestLocalPutRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "http://localhost:8081/files")
	l.now = func() time.Time { return fixed }

	_, err := l.Put(context.Background(), FolderStudents, "a.jpg", io.MultiReader(strings.NewReader("half"), failingReader{}))
	require.ErrorContains(t, err, "connection reset")

	_, err = os.Stat(filepath.Join(dir, "students", "1717000000123_a.jpg"))
	assert.True(t, os.IsNotExist(err), "partial upload left on disk")
}

func TestCloudinaryPut(t *testing.T) {
	var fields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/auto/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "pdfdata", string(data))
		fmt.Fprint(w, `{"public_id":"school/homework/1717000000123_sheet","secure_url":"https://res.example/sheet.pdf"}`)
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "key", "secret", "/school/")
	c.Endpoint = srv.URL
	c.now = func() time.Time { return fixed }

	url, err := c.Put(context.Background(), FolderHomework, "sheet.pdf", strings.NewReader("pdfdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/sheet.pdf", url)

	assert.Equal(t, "school/homework", fields["folder"])
	assert.Equal(t, "1717000000123_sheet", fields["public_id"])
	assert.Equal(t, "key", fields["api_key"])
	payload := "folder=school/homework&public_id=1717000000123_sheet&timestamp=1717000000" + "secret"
	assert.Equal(t, fmt.Sprintf("%x", sha1.Sum([]byte(payload))), fields["signature"])
}

func TestCloudinaryPutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "key", "secret", "")
	c.Endpoint = srv.URL
	_, err := c.Put(context.Background(), FolderStudents, "a.jpg", strings.NewReader("x"))
	assert.ErrorContains(t, err, "upload failed (400)")
}
