// Package attributes resolves the inheritable attributes of foods and
// categories: ready meal option, same as before option, reasonable amount and
// use in recipes.
//
// A food's own row wins; fields it leaves unset come from its ancestor
// categories, one generation at a time, and finally from the defaults row.
// Within a generation rows are merged in ascending category id order. The walk
// tracks visited categories and terminates on cyclic graphs.
//
// Batch lookups go through the shared cache under the food-attributes and
// category-attributes namespaces.
package attributes
