package kvstore

// Filename exposes the file path of key for white-box tests.
func (s *FileStore) Filename(key string) string {
	return s.filename(key)
}
