package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// 测试内容：验证保存、读取、删除的完整流程。
func TestLocalStore_SaveGetDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore 错误: %v", err)
	}
	ctx := context.Background()
	name := PublicationName(12)

	if err := store.Save(ctx, name, []byte("png-bytes")); err != nil {
		t.Fatalf("Save 错误: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "publication", "12")); err != nil {
		t.Fatalf("期望文件位于 publication/12: %v", err)
	}

	got, err := store.Get(ctx, name)
	if err != nil {
		t.Fatalf("Get 错误: %v", err)
	}
	if !bytes.Equal(got, []byte("png-bytes")) {
		t.Fatalf("期望读回相同内容，实际为 %q", got)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("Delete 错误: %v", err)
	}
	if _, err := store.Get(ctx, name); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("期望 ErrObjectNotFound，实际为 %v", err)
	}
	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("期望重复删除成功，实际为 %v", err)
	}
}

// 测试内容：验证对象名不能越出存储根目录。
func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore 错误: %v", err)
	}
	if err := store.Save(context.Background(), "../escape", []byte("x")); err == nil {
		t.Fatalf("期望越界对象名返回错误")
	}
}

// 测试内容：验证对象命名规则。
func TestObjectNames(t *testing.T) {
	if AvatarName(7) != "avatar/7" {
		t.Fatalf("期望 avatar/7，实际为 %s", AvatarName(7))
	}
	if PublicationName(7) != "publication/7" {
		t.Fatalf("期望 publication/7，实际为 %s", PublicationName(7))
	}
}
