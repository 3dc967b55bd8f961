package schema

import (
	"testing"

	"adminkit/internal/metadata"
	"adminkit/internal/store"
)

func TestRoutesFor_CanonicalFive(t *testing.T) {
	rs := RoutesFor(testEntity())

	if rs.BasePath != "/clients" {
		t.Fatalf("BasePath = %q", rs.BasePath)
	}
	if len(rs.Routes) != 5 {
		t.Fatalf("expected 5 routes, got %d", len(rs.Routes))
	}

	want := []struct {
		op     Operation
		method string
		path   string
		status int
	}{
		{OpList, "GET", "/", 200},
		{OpGet, "GET", "/:id", 200},
		{OpCreate, "POST", "/", 201},
		{OpUpdate, "PATCH", "/:id", 200},
		{OpDelete, "DELETE", "/:id", 200},
	}
	for i, w := range want {
		rt := rs.Routes[i]
		if rt.Op != w.op || rt.Method != w.method || rt.Path != w.path || rt.SuccessStatus != w.status {
			t.Fatalf("route %d = %+v, want %+v", i, rt, w)
		}
	}
}

func TestRoutesFor_SchemaRefs(t *testing.T) {
	rs := RoutesFor(testEntity())
	byOp := make(map[Operation]Route)
	for _, rt := range rs.Routes {
		byOp[rt.Op] = rt
	}

	if byOp[OpList].Query != RefPartial {
		t.Fatal("list must validate queries against the partial schema")
	}
	if byOp[OpCreate].Body != RefFull {
		t.Fatal("create must validate the body against the full schema")
	}
	if byOp[OpUpdate].Body != RefPartial || byOp[OpUpdate].Params != RefIDOnly {
		t.Fatal("update must use partial body and id params")
	}
	if byOp[OpDelete].Params != RefIDOnly {
		t.Fatal("delete must use id params")
	}
}

func TestCompile_SharesSchemaInstance(t *testing.T) {
	reg, err := metadata.NewRegistry(testEntity())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	compiled, err := Compile(reg, &store.SQLiteDialect{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	all := compiled.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(all))
	}
	a := all[0]
	if a.Schema == nil || a.TableSQL == "" || len(a.Routes.Routes) != 5 {
		t.Fatalf("incomplete artifacts: %+v", a)
	}
	if compiled.ByTable("clients") != a {
		t.Fatal("ByTable must return the same artifact instance")
	}
	// Full and Partial are views over the same compiled rules.
	if a.Schema.Full.Rule("name") != a.Schema.Partial.Rule("name") {
		t.Fatal("full and partial schemas must share field rules")
	}
}

func TestCompile_BrokenEntityAborts(t *testing.T) {
	e := testEntity()
	e.Fields = append(e.Fields, metadata.Field{
		Key:      "shape",
		DBConfig: metadata.FieldDBConfig{ColumnName: "shape", Type: metadata.ColumnType("geometry")},
		Input:    metadata.InputOptions{Kind: metadata.InputText, Label: "Shape"},
	})
	// The registry rejects the unknown type before compilation even runs.
	if _, err := metadata.NewRegistry(e); err == nil {
		t.Fatal("expected registry construction to fail")
	}
}

func TestBoolColumns(t *testing.T) {
	e := testEntity()
	e.Fields = append(e.Fields, metadata.Field{
		Key:      "archived",
		DBConfig: metadata.FieldDBConfig{ColumnName: "archived", Type: metadata.TypeBoolean},
		Input:    metadata.InputOptions{Kind: metadata.InputCheckbox, Label: "Archived"},
	})
	reg, err := metadata.NewRegistry(e)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	compiled, err := Compile(reg, &store.SQLiteDialect{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := compiled.All()[0].BoolColumns()
	if len(cols) != 1 || cols[0] != "archived" {
		t.Fatalf("BoolColumns() = %v", cols)
	}
}

func TestTimeAndJSONColumns(t *testing.T) {
	e := testEntity()
	e.Fields = append(e.Fields, metadata.Field{
		Key:      "signed_at",
		DBConfig: metadata.FieldDBConfig{ColumnName: "signed_at", Type: metadata.TypeTimestamptz, Nullable: true},
		Input:    metadata.InputOptions{Kind: metadata.InputDate, Label: "Signed at"},
	})
	reg, err := metadata.NewRegistry(e)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	compiled, err := Compile(reg, &store.SQLiteDialect{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	a := compiled.All()[0]
	if cols := a.TimeColumns(); len(cols) != 1 || cols[0] != "signed_at" {
		t.Fatalf("TimeColumns() = %v", cols)
	}
	// The varchar and text columns must never be listed as temporal.
	for _, col := range a.TimeColumns() {
		if col == "name" || col == "address" {
			t.Fatalf("non-temporal column listed: %v", a.TimeColumns())
		}
	}
	if cols := a.JSONColumns(); len(cols) != 1 || cols[0] != "files" {
		t.Fatalf("JSONColumns() = %v", cols)
	}
}
