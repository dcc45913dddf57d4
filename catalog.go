package slideshow

import (
	"path"
	"strings"
)

// scan builds the image catalog: the directory listing filtered to the
// accepted suffixes, in enumeration order, capped at the configured
// maximum. The catalog is built once per session and never mutated
// afterwards.
func (s *Slideshow) scan() ([]string, error) {
	names, err := s.storage.List(s.config.Storage.ImageDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range names {
		if max := s.config.Storage.MaxFiles; max > 0 && len(files) == max {
			s.logger.WithField("max", max).Warn("image limit reached, ignoring the rest")
			break
		}
		if !acceptedSuffix(name, s.config.Storage.Extensions) {
			continue
		}
		files = append(files, path.Join(s.config.Storage.ImageDir, name))
	}

	return files, nil
}

func acceptedSuffix(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
