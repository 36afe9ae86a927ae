// Package file stores configuration in a TOML file. Nested tables are
// addressed with dotted keys, and SERCHA_VIEW_* environment variables
// override individual keys without being written back.
package file
