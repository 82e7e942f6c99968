package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"routelens/internal/core/config"
	"routelens/internal/core/ports"
)

const postsContractSource = `import { initContract } from '@ts-rest/core';

const c = initContract();

export const postsContract = c.router(
  {
    createPost: c.post('/posts', { summary: 'Create a post' }),
    getPost: { method: 'GET', path: '/posts/:id', summary: 'Get one post' },
  },
  { pathPrefix: '/api' }
);
`

const postsControllerSource = `import { Controller } from '@nestjs/common';
import { TsRestHandler } from '@ts-rest/nest';
import { postsContract } from './posts.contract';

@Controller()
export class PostsController {
  @TsRestHandler(postsContract.createPost)
  async createPost() {}

  @TsRestHandler(postsContract.getPost)
  async getPost() {}
}
`

func newTestApp(t *testing.T, scanPath string) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.ScanPaths = []string{scanPath}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestAnnotateFile_ResolvesRoutes(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	controller := filepath.Join(dir, "posts.controller.ts")
	writeFixture(t, controller, postsControllerSource)

	a := newTestApp(t, dir)

	result, err := a.AnnotateFile(context.Background(), controller)
	if err != nil {
		t.Fatalf("annotate file: %v", err)
	}

	if len(result.Annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d (%+v)", len(result.Annotations), result.Unresolved)
	}
	if len(result.Unresolved) != 0 {
		t.Fatalf("expected no unresolved decorators, got %+v", result.Unresolved)
	}

	first, second := result.Annotations[0], result.Annotations[1]
	if first.Text != "▸ POST /api/posts — Create a post" {
		t.Errorf("unexpected first annotation: %q", first.Text)
	}
	if second.Text != "▸ GET /api/posts/:id — Get one post" {
		t.Errorf("unexpected second annotation: %q", second.Text)
	}
	if first.Line >= second.Line {
		t.Errorf("expected source order, got lines %d and %d", first.Line, second.Line)
	}
	if first.Route.FullPath != "/api/posts" || first.Route.Method != "POST" {
		t.Errorf("unexpected route info: %+v", first.Route)
	}
	if result.Language != "typescript" {
		t.Errorf("expected typescript, got %q", result.Language)
	}
}

func TestAnnotateFile_UnresolvedReasons(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	controller := filepath.Join(dir, "mixed.controller.ts")
	writeFixture(t, controller, `import { TsRestHandler } from '@ts-rest/nest';
import { postsContract } from './posts.contract';
import { apiContract } from '@acme/contracts';

export class MixedController {
  @TsRestHandler(postsContract.nonexistent)
  async broken() {}

  @TsRestHandler(apiContract.listUsers)
  async external() {}

  @TsRestHandler(unknownBase.thing)
  async unknown() {}
}
`)

	a := newTestApp(t, dir)
	result, err := a.AnnotateFile(context.Background(), controller)
	if err != nil {
		t.Fatalf("annotate file: %v", err)
	}

	if len(result.Annotations) != 0 {
		t.Fatalf("expected no annotations, got %+v", result.Annotations)
	}
	if len(result.Unresolved) != 3 {
		t.Fatalf("expected 3 unresolved, got %d", len(result.Unresolved))
	}

	reasons := map[string]string{}
	for _, u := range result.Unresolved {
		reasons[u.Base] = u.Reason
	}
	if reasons["postsContract"] != "STRUCTURAL_MISMATCH" {
		t.Errorf("expected STRUCTURAL_MISMATCH for missing operation, got %q", reasons["postsContract"])
	}
	if reasons["apiContract"] != "IMPORT_NOT_RESOLVED" {
		t.Errorf("expected IMPORT_NOT_RESOLVED for bare package import, got %q", reasons["apiContract"])
	}
	if reasons["unknownBase"] != "IMPORT_NOT_RESOLVED" {
		t.Errorf("expected IMPORT_NOT_RESOLVED for unbound identifier, got %q", reasons["unknownBase"])
	}
}

func TestAnnotateFile_UnsupportedAndMissing(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, dir)

	if _, err := a.AnnotateFile(context.Background(), filepath.Join(dir, "README.md")); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
	if _, err := a.AnnotateFile(context.Background(), filepath.Join(dir, "gone.controller.ts")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAnnotateFile_CachesOutcomes(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	controller := filepath.Join(dir, "posts.controller.ts")
	writeFixture(t, controller, postsControllerSource)

	a := newTestApp(t, dir)
	if _, err := a.AnnotateFile(context.Background(), controller); err != nil {
		t.Fatal(err)
	}
	if a.results.len() != 2 {
		t.Fatalf("expected 2 cached outcomes, got %d", a.results.len())
	}

	// A second pass serves from the cache and yields identical output.
	again, err := a.AnnotateFile(context.Background(), controller)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Annotations) != 2 {
		t.Fatalf("expected 2 annotations from cached outcomes, got %d", len(again.Annotations))
	}
}

func TestAnnotateWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	writeFixture(t, filepath.Join(dir, "posts.controller.ts"), postsControllerSource)
	writeFixture(t, filepath.Join(dir, "node_modules", "dep", "decoy.controller.ts"), postsControllerSource)

	a := newTestApp(t, dir)
	result, err := a.AnnotateWorkspace(context.Background())
	if err != nil {
		t.Fatalf("annotate workspace: %v", err)
	}

	// The contract file itself parses but carries no decorators.
	if result.Scanned != 2 {
		t.Fatalf("expected 2 scanned files, got %d", result.Scanned)
	}
	if result.Routes != 2 || result.Unresolved != 0 || result.Decorators != 2 {
		t.Fatalf("unexpected workspace counts: %+v", result)
	}

	summary := a.Summary()
	if summary.FilesScanned != 2 || summary.Routes != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.UpdatedAt.IsZero() {
		t.Fatal("expected summary timestamp to be set")
	}
}

func TestHandleChanges_ContractEditReannotatesDependents(t *testing.T) {
	dir := t.TempDir()
	contract := filepath.Join(dir, "posts.contract.ts")
	writeFixture(t, contract, postsContractSource)
	controller := filepath.Join(dir, "posts.controller.ts")
	writeFixture(t, controller, postsControllerSource)

	a := newTestApp(t, dir)
	ctx := context.Background()
	if _, err := a.AnnotateWorkspace(ctx); err != nil {
		t.Fatal(err)
	}

	updates := make(chan ports.WatchUpdate, 4)
	a.SetUpdateHandler(func(u ports.WatchUpdate) { updates <- u })

	writeFixture(t, contract, strings.Replace(postsContractSource, "'/api'", "'/v2'", 1))
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(contract, future, future); err != nil {
		t.Fatal(err)
	}

	a.HandleChanges(ctx, []string{contract})

	var controllerUpdate *ports.WatchUpdate
	for len(updates) > 0 {
		u := <-updates
		if u.File == controller {
			controllerUpdate = &u
		}
	}
	if controllerUpdate == nil {
		t.Fatal("expected an update for the dependent controller")
	}
	if len(controllerUpdate.Result.Annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %+v", controllerUpdate.Result)
	}
	if got := controllerUpdate.Result.Annotations[0].Route.FullPath; got != "/v2/posts" {
		t.Errorf("expected new prefix to apply, got %q", got)
	}
}

func TestHandleChanges_DeletedFileIsForgotten(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	controller := filepath.Join(dir, "posts.controller.ts")
	writeFixture(t, controller, postsControllerSource)

	a := newTestApp(t, dir)
	ctx := context.Background()
	if _, err := a.AnnotateWorkspace(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Summary().FilesScanned != 2 {
		t.Fatalf("unexpected summary before delete: %+v", a.Summary())
	}

	if err := os.Remove(controller); err != nil {
		t.Fatal(err)
	}
	a.HandleChanges(ctx, []string{controller})

	summary := a.Summary()
	if summary.FilesScanned != 1 {
		t.Fatalf("expected deleted file to drop from summary, got %+v", summary)
	}
	if summary.Routes != 0 {
		t.Fatalf("expected no routes after controller removal, got %+v", summary)
	}
}

func TestApplyConfig_SwapsRenderer(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "posts.contract.ts"), postsContractSource)
	controller := filepath.Join(dir, "posts.controller.ts")
	writeFixture(t, controller, postsControllerSource)

	a := newTestApp(t, dir)
	ctx := context.Background()
	if _, err := a.AnnotateFile(ctx, controller); err != nil {
		t.Fatal(err)
	}

	next := config.DefaultConfig()
	next.ScanPaths = []string{dir}
	next.Annotations.Prefix = ">> "
	a.ApplyConfig(next)

	result, err := a.AnnotateFile(ctx, controller)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(result.Annotations[0].Text, ">> ") {
		t.Errorf("expected reloaded prefix, got %q", result.Annotations[0].Text)
	}
}

func TestScanDirectories_Excludes(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "a.controller.ts"), "export class A {}")
	writeFixture(t, filepath.Join(dir, "skip.spec.ts"), "export class S {}")
	writeFixture(t, filepath.Join(dir, "dist", "b.controller.ts"), "export class B {}")
	writeFixture(t, filepath.Join(dir, "notes.txt"), "not source")

	a := newTestApp(t, dir)
	files, err := a.ScanDirectories([]string{dir}, []string{"dist"}, []string{"*.spec.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.controller.ts" {
		t.Fatalf("unexpected scan result: %v", files)
	}
}

func TestScanDirectories_NestedRoots(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "a.controller.ts"), "export class A {}")
	writeFixture(t, filepath.Join(dir, "api", "b.controller.ts"), "export class B {}")

	a := newTestApp(t, dir)
	files, err := a.ScanDirectories([]string{dir, filepath.Join(dir, "api")}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected nested root to be walked once, got %v", files)
	}
}

func TestScanDirectories_RejectsBadPattern(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	if _, err := a.ScanDirectories([]string{"."}, []string{"["}, nil); err == nil {
		t.Fatal("expected error for invalid glob pattern")
	}
}
