package assets

import "errors"

// Asset type errors
var (
	ErrInvalidAssetType   = errors.New("invalid asset type")
	ErrUnknownAssetType   = errors.New("no singular form known for asset type")
	ErrDuplicateAssetType = errors.New("duplicate asset type")
	ErrNoAssetTypes       = errors.New("no asset types configured")
)
