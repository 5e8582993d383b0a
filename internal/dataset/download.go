package dataset

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// DownloadIfMissing fetches url into filePath unless the file already
// exists. Partial downloads are written to a temporary file and renamed
// only on success, so an interrupted download never leaves a truncated
// file behind.
func DownloadIfMissing(rawURL, filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		klog.V(1).Infof("%s already present, skipping download", filePath)
		return nil
	}

	if err := os.MkdirAll(path.Dir(filePath), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", path.Dir(filePath))
	}

	tmpPath := filePath + ".partial"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", tmpPath)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	resp, err := http.Get(rawURL)
	if err != nil {
		return errors.Wrapf(err, "failed to download %q", rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("bad status %q downloading %q", resp.Status, rawURL)
	}

	bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(filePath))
	written, err := io.Copy(io.MultiWriter(tmp, bar), resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed while downloading %q", rawURL)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to flush %q", tmpPath)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return errors.Wrapf(err, "failed to move download into place at %q", filePath)
	}

	klog.V(1).Infof("downloaded %s (%s)", filePath, humanize.Bytes(uint64(written)))
	return nil
}

// Download fetches all four IDX files of a source into
// baseDir/<source-name>/, skipping files that are already present.
func Download(source Source, baseDir string) error {
	dir := source.dir(baseDir)
	for _, file := range []string{trainImagesFile, trainLabelsFile, testImagesFile, testLabelsFile} {
		fileURL, err := url.JoinPath(source.BaseURL, file)
		if err != nil {
			return errors.Wrapf(err, "bad URL for %q", file)
		}
		if err := DownloadIfMissing(fileURL, path.Join(dir, file)); err != nil {
			return err
		}
	}
	return nil
}
