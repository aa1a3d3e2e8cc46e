package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"logs.tar.gz", KindTarGz},
		{"LOGS.TAR.GZ", KindTarGz},
		{"bundle.tgz", KindTarGz},
		{"/var/tmp/nested/extra.zip", KindZip},
		{"Extra.Zip", KindZip},
		{"logs.gz", KindUnknown},
		{"logs.tar", KindUnknown},
		{"logs.rar", KindUnknown},
		{"zip", KindUnknown},
		{"archive.zip/readme.txt", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.name))
			assert.Equal(t, tt.want != KindUnknown, IsArchive(tt.name))
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"logs.tar.gz", "logs"},
		{"logs.TAR.GZ", "logs"},
		{"bundle.tgz", "bundle"},
		{"extra.zip", "extra"},
		{"dir/extra.zip", "dir/extra"},
		{"release-1.2.tar.gz", "release-1.2"},
		{".zip", ""},
		{"plain.log", "plain.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stem(tt.name))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tar.gz", KindTarGz.String())
	assert.Equal(t, "zip", KindZip.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestSafeJoin(t *testing.T) {
	root := "/tmp/root"
	tests := []struct {
		name    string
		entry   string
		want    string
		wantErr bool
	}{
		{"plain", "a.log", "/tmp/root/a.log", false},
		{"nested", "dir/b.log", "/tmp/root/dir/b.log", false},
		{"dot prefix", "./dir/c.log", "/tmp/root/dir/c.log", false},
		{"self", "./", "/tmp/root", false},
		{"inner dotdot", "dir/../d.log", "/tmp/root/d.log", false},
		{"parent", "../evil.log", "", true},
		{"deep parent", "dir/../../evil.log", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := safeJoin(root, tt.entry)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkStaysInside(t *testing.T) {
	root := "/tmp/root"
	assert.True(t, linkStaysInside(root, "/tmp/root/alias", "a.log"))
	assert.True(t, linkStaysInside(root, "/tmp/root/dir/alias", "../a.log"))
	assert.False(t, linkStaysInside(root, "/tmp/root/alias", "../outside.log"))
	assert.False(t, linkStaysInside(root, "/tmp/root/alias", "/etc/passwd"))
	assert.False(t, linkStaysInside(root, "/tmp/root/alias", ""))
}

func TestDefaultDestDir(t *testing.T) {
	assert.Equal(t, "/data/logs", DefaultDestDir("/data/logs.tar.gz"))
	assert.Equal(t, "/data/extra", DefaultDestDir("/data/extra.ZIP"))
	assert.Equal(t, "/data/_extracted", DefaultDestDir("/data/.tar.gz"))
}
