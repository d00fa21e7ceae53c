// Package mmap maps files read-only into memory.
//
// Local blob reads use it so that importing a large exported buffer scans
// the page cache directly instead of copying through read calls. On
// platforms without mmap support the file is read into memory instead.
package mmap
