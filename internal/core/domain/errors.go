package domain

import "errors"

// ErrDuplicateName is returned by stores when an item name is already taken.
var ErrDuplicateName = errors.New("item name already exists")
