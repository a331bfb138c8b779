// Package formats provides readers and writers for the cloth asset file formats.
package formats
