//go:build ruleguard

// Package gorules holds the go-ruleguard checks run by golangci-lint.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// BareErrors flags plain error construction in library packages. Errors
// leaving internal/ carry a component and a category so callers can use
// errors.IsCategory.
//
//	return fmt.Errorf("unknown season %q", s)
//
// becomes
//
//	return errors.Newf("unknown season %q", s).
//		Component("dataset").
//		Category(errors.CategoryValidation).
//		Build()
func BareErrors(m dsl.Matcher) {
	m.Import("github.com/bigearthnet-go/bencommon/internal/errors")

	m.Match(`return $*_, fmt.Errorf($*args)`, `return fmt.Errorf($*args)`).
		Where(m.File().PkgPath.Matches(`/internal/`) &&
			!m.File().PkgPath.Matches(`/internal/(errors|observability)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("build a categorized error with errors.Newf(...).Component(...).Category(...).Build()")
}

// PrintInLibrary flags terminal output from library packages. Library code
// logs through the module logger; only cmd/ writes to stdout.
func PrintInLibrary(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `fmt.Print($*_)`, `log.Printf($*_)`, `log.Println($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use the package logger (getLogger()) instead of printing")
}

// ExitOutsideMain flags process termination below main.
func ExitOutsideMain(m dsl.Matcher) {
	m.Match(`os.Exit($_)`, `log.Fatal($*_)`, `log.Fatalf($*_)`).
		Where(!m.File().PkgPath.Matches(`bencommon$`)).
		Report("return an error instead of terminating, main decides the exit code")
}

// TestingContext detects context.Background() or context.TODO() in tests
// and suggests t.Context(), which is cancelled when the test completes.
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$ctx := context.TODO()`,
		`$ctx = context.TODO()`,
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead of context.Background() or context.TODO()")
}

// SleepInTests flags fixed sleeps used for synchronisation in tests.
func SleepInTests(m dsl.Matcher) {
	m.Match(`time.Sleep($_)`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("synchronise on a channel or use require.Eventually instead of sleeping")
}
