package database

import (
	"net/url"
	"testing"
)

func TestBuildDSN_InjectsKeyAsPassword(t *testing.T) {
	dsn, err := BuildDSN("postgres://rapor@db.example.com:5432/rapor?sslmode=require", "s3cret")
	if err != nil {
		t.Fatalf("BuildDSN 应成功: %v", err)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("结果应为合法 URL: %v", err)
	}
	if u.User.Username() != "rapor" {
		t.Errorf("期望用户名=rapor，实际=%s", u.User.Username())
	}
	if pw, _ := u.User.Password(); pw != "s3cret" {
		t.Errorf("期望密码=s3cret，实际=%s", pw)
	}
	if u.Query().Get("sslmode") != "require" {
		t.Error("查询参数应保留")
	}
}

func TestBuildDSN_DefaultUser(t *testing.T) {
	dsn, err := BuildDSN("postgresql://db.example.com/rapor", "k")
	if err != nil {
		t.Fatalf("BuildDSN 应成功: %v", err)
	}
	u, _ := url.Parse(dsn)
	if u.User.Username() != "postgres" {
		t.Errorf("期望默认用户名=postgres，实际=%s", u.User.Username())
	}
}

func TestBuildDSN_RejectsOtherSchemes(t *testing.T) {
	cases := []string{
		"https://xyz.supabase.co",
		"mysql://root@localhost/rapor",
		"postgres://",
	}
	for _, c := range cases {
		if _, err := BuildDSN(c, "k"); err == nil {
			t.Errorf("端点 %q 应被拒绝", c)
		}
	}
}
