package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	rasterlockVersion = "0.1.0"
	rasterlockMain    = "cmd/rasterlock"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())
	b.Test().Does(Go().TestAll())
	b.Build().DependsOnRunner("clean-build", "", RemoveDir("build"))
	b.Package().DependsOnRunner("clean-dist", "", RemoveDir("dist"))
	b.AddNewStep("demo", "Runs both ciphers end to end in memory", Go().Run("./"+rasterlockMain, "demo")).
		DependsOn(b.Test())

	app := NewAppBuild("rasterlock", rasterlockMain, rasterlockVersion).
		Build(func(gb *GoBuild) {
			gb.
				StripDebugSymbols().
				TrimPath().
				SetVariable("main", "version", rasterlockVersion).
				Env("CGO_ENABLED", "0")
		})
	app.HostVariant()
	for _, target := range [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	} {
		app.Variant(target[0], target[1])
	}
	b.ImportApp(app)

	b.Execute()
}
