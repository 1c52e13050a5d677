package schema

import (
	om "github.com/wk8/go-ordered-map/v2"
)

// om_PropertyMap is the insertion-order-preserving backing store for
// Schema's object variant, mirroring Object for StructuredContent.
type om_PropertyMap = om.OrderedMap[string, Property]

func newPropertyMap() *om_PropertyMap {
	return om.New[string, Property]()
}
