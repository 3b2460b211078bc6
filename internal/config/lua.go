package config

import (
	"context"
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/andrebq/authdeck/internal/logutil"
)

// injectRealmLibs loads the libs a realm file can use, the file cannot load
// modules or other files.
func injectRealmLibs(L *lua.LState) error {
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			return err
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return nil
}

// LoadRealm evaluates the Lua file at path, which must return a table such as
//
//	return {
//		auth_type = "basic_auth",
//		excluded_paths = { "/api/v1/status/" },
//	}
//
// Fields absent from the table keep their zero value, use Realm.Merge to
// apply them on top of another Realm.
func LoadRealm(ctx context.Context, path string) (Realm, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)
	if err := injectRealmLibs(L); err != nil {
		return Realm{}, fmt.Errorf("config: unable to prepare lua state, cause %w", err)
	}
	fn, err := L.LoadFile(path)
	if err != nil {
		return Realm{}, fmt.Errorf("config: unable to load realm file %v, cause %w", path, err)
	}
	return evalRealm(ctx, L, fn, path)
}

// ParseRealm works like LoadRealm for code held in memory.
func ParseRealm(ctx context.Context, name, code string) (Realm, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)
	if err := injectRealmLibs(L); err != nil {
		return Realm{}, fmt.Errorf("config: unable to prepare lua state, cause %w", err)
	}
	fn, err := L.LoadString(code)
	if err != nil {
		return Realm{}, fmt.Errorf("config: unable to parse realm %v, cause %w", name, err)
	}
	return evalRealm(ctx, L, fn, name)
}

func evalRealm(ctx context.Context, L *lua.LState, fn *lua.LFunction, name string) (Realm, error) {
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return Realm{}, fmt.Errorf("config: unable to evaluate realm %v, cause %w", name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Realm{}, fmt.Errorf("config: realm %v must return a table, got %v", name, ret.Type())
	}
	var r Realm
	if err := gluamapper.Map(tbl, &r); err != nil {
		return Realm{}, fmt.Errorf("config: unable to map realm %v, cause %w", name, err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Debug().Str("realm", name).Str("authType", r.AuthType).Int("excludedPaths", len(r.ExcludedPaths)).Msg("Realm loaded")
	return r, nil
}
