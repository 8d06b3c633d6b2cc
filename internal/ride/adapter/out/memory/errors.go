package memory

import "errors"

var (
	errReferenced     = errors.New("ride request is referenced by a ride group")
	errMissingRequest = errors.New("ride request does not exist")
	errDuplicateGroup = errors.New("ride request already has a group")
)
