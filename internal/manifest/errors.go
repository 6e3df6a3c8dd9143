package manifest

import "errors"

// Rebuild errors
var (
	ErrCreateDirectory = errors.New("failed to create directory")
	ErrScanDirectory   = errors.New("failed to scan asset directory")
	ErrRenameAsset     = errors.New("failed to rename asset")
	ErrWriteManifest   = errors.New("failed to write manifest")
)

// Manifest decoding errors
var (
	ErrReadManifest   = errors.New("failed to read manifest")
	ErrDecodeManifest = errors.New("failed to decode manifest")
)
