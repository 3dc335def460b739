// Package form turns templated form markup into per-request form instances.
//
// A source (a file path or literal markup) is compiled once into a
// model.Compiled representation, optionally persisted through a cache.Store,
// and cloned into a fresh Form for every request:
//
//	f, err := form.New(ctx, "templates/signup.html",
//		form.WithCache(true),
//		form.WithVariables(map[string]any{"plans": plans}),
//	)
//	if err != nil {
//		return err
//	}
//	errs, err := f.Handle(r, func(data map[string]any) { save(data) }, nil)
//
// Forms are not safe for concurrent use; the compiled master they clone from
// is never mutated and can be shared freely.
package form
