package square

import (
	"context"
	"encoding/json"

	sq "github.com/square/square-go-sdk"

	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

// Catalog is the slice of the seller catalog needed to categorize sales.
type Catalog struct {
	// CategoryNames maps category object ids to their display names.
	CategoryNames map[string]string
	// ItemCategory maps item and item variation ids to a category id.
	ItemCategory map[string]string
}

// CategoryFor returns the category id of a line item's catalog object.
func (c *Catalog) CategoryFor(objectID string) (string, bool) {
	if c == nil || objectID == "" {
		return "", false
	}
	id, ok := c.ItemCategory[objectID]
	return id, ok && id != ""
}

type catalogObject struct {
	Type         string               `json:"type"`
	ID           string               `json:"id"`
	IsDeleted    bool                 `json:"is_deleted"`
	ItemData     *catalogItemData     `json:"item_data"`
	CategoryData *catalogCategoryData `json:"category_data"`
}

type catalogRef struct {
	ID string `json:"id"`
}

type catalogItemData struct {
	Name              string       `json:"name"`
	CategoryID        string       `json:"category_id"`
	Categories        []catalogRef `json:"categories"`
	ReportingCategory *catalogRef  `json:"reporting_category"`
	Variations        []catalogRef `json:"variations"`
}

type catalogCategoryData struct {
	Name string `json:"name"`
}

// categoryID prefers the reporting category, then the first listed
// category, then the legacy single category field.
func (d *catalogItemData) categoryID() string {
	if d.ReportingCategory != nil && d.ReportingCategory.ID != "" {
		return d.ReportingCategory.ID
	}
	for _, ref := range d.Categories {
		if ref.ID != "" {
			return ref.ID
		}
	}
	return d.CategoryID
}

// FetchCatalog pages through the seller's items and categories and indexes
// every item variation by the category of its parent item.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	if c == nil || c.sdk == nil {
		return nil, errAccessTokenRequired
	}

	limit := c.pageLimit
	req := &sq.SearchCatalogObjectsRequest{
		ObjectTypes: []sq.CatalogObjectType{sq.CatalogObjectTypeItem, sq.CatalogObjectTypeCategory},
		Limit:       &limit,
	}

	catalog := &Catalog{
		CategoryNames: map[string]string{},
		ItemCategory:  map[string]string{},
	}
	for page := 1; ; page++ {
		c.log(ctx, "request", "search_catalog", map[string]any{"page": page})
		resp, err := c.sdk.Catalog.Search(ctx, req)
		if err != nil {
			c.log(ctx, "error", "search_catalog", map[string]any{"error": err.Error()})
			return nil, c.mapSquareError(err, "search catalog")
		}

		objects, err := decodeCatalogObjects(resp.GetObjects())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode square catalog")
		}
		catalog.add(objects)

		cursor := stringValue(resp.GetCursor())
		c.log(ctx, "response", "search_catalog", map[string]any{
			"objects":  len(objects),
			"has_more": cursor != "",
		})
		if cursor == "" {
			return catalog, nil
		}
		req.Cursor = &cursor
	}
}

func (c *Catalog) add(objects []catalogObject) {
	for _, obj := range objects {
		if obj.IsDeleted || obj.ID == "" {
			continue
		}
		switch obj.Type {
		case string(sq.CatalogObjectTypeCategory):
			if obj.CategoryData != nil {
				c.CategoryNames[obj.ID] = obj.CategoryData.Name
			}
		case string(sq.CatalogObjectTypeItem):
			if obj.ItemData == nil {
				continue
			}
			categoryID := obj.ItemData.categoryID()
			if categoryID == "" {
				continue
			}
			c.ItemCategory[obj.ID] = categoryID
			for _, v := range obj.ItemData.Variations {
				if v.ID != "" {
					c.ItemCategory[v.ID] = categoryID
				}
			}
		}
	}
}

func decodeCatalogObjects(in []*sq.CatalogObject) ([]catalogObject, error) {
	if len(in) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out []catalogObject
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
