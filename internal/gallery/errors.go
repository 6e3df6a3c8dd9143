package gallery

import "errors"

// Server setup errors
var (
	ErrReservedAssetType = errors.New("asset type name is reserved")
	ErrCreateDirectory   = errors.New("failed to create asset directory")
)
