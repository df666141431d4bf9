package repositories

import "natours/internal/query"

// TourSchema exposes the tours table to the query pipeline. Secret tours are
// never returned by reads.
var TourSchema = query.Schema{
	Table:   "tours",
	IDField: "id",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "name", Column: "name"},
		{Name: "duration", Column: "duration", Kind: query.KindInt},
		{Name: "maxGroupSize", Column: "max_group_size", Kind: query.KindInt},
		{Name: "difficulty", Column: "difficulty"},
		{Name: "ratingsAverage", Column: "ratings_average", Kind: query.KindNumber},
		{Name: "ratingsQuantity", Column: "ratings_quantity", Kind: query.KindInt},
		{Name: "price", Column: "price", Kind: query.KindNumber},
		{Name: "priceDiscount", Column: "price_discount", Kind: query.KindNumber},
		{Name: "summary", Column: "summary"},
		{Name: "description", Column: "description"},
		{Name: "imageCover", Column: "image_cover"},
		{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
		{Name: "secretTour", Column: "secret_tour", Kind: query.KindBool, Internal: true},
	},
	DefaultSort: []query.SortKey{{Field: "createdAt", Direction: query.Desc}},
	Scope:       []query.Predicate{{Field: "secretTour", Op: query.OpNe, Value: true}},
}

// TourFilterWhitelist are the tour fields clients may filter on.
var TourFilterWhitelist = []string{"duration", "ratingsQuantity", "ratingsAverage", "maxGroupSize", "difficulty", "price"}

// UserSchema never lists password material; deactivated accounts are
// invisible.
var UserSchema = query.Schema{
	Table:   "users",
	IDField: "id",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "name", Column: "name"},
		{Name: "email", Column: "email"},
		{Name: "role", Column: "role"},
		{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
		{Name: "active", Column: "active", Kind: query.KindBool, Internal: true},
	},
	DefaultSort: []query.SortKey{{Field: "createdAt", Direction: query.Desc}},
	Scope:       []query.Predicate{{Field: "active", Op: query.OpEq, Value: true}},
}

var UserFilterWhitelist = []string{"name", "email", "role"}

var ReviewSchema = query.Schema{
	Table:   "reviews",
	IDField: "id",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "review", Column: "review"},
		{Name: "rating", Column: "rating", Kind: query.KindInt},
		{Name: "tour", Column: "tour_id"},
		{Name: "user", Column: "user_id"},
		{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
	},
	DefaultSort: []query.SortKey{{Field: "createdAt", Direction: query.Desc}},
}

var ReviewFilterWhitelist = []string{"rating", "tour", "user"}
