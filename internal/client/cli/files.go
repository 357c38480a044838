package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

func (a *App) List(ctx context.Context) error {
	files, err := a.api.ListFiles(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(files) == 0 {
		fmt.Println("No files yet")
		return nil
	}

	for _, f := range files {
		fmt.Printf("%d\t%s\n", f.ID, f.Title)
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {
	id, err := a.promptFileID()
	if err != nil {
		return err
	}

	file, err := a.api.GetFile(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("--- %s ---\n%s\n", file.Title, file.SourceCode)
	return nil
}

func (a *App) New(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	sourceCode, err := GetMultiline(a.reader, "Enter source code", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	file, err := a.api.CreateFile(ctx, title, sourceCode)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Created file %d (%s)\n", file.ID, file.Title)
	return nil
}

func (a *App) Edit(ctx context.Context) error {
	id, err := a.promptFileID()
	if err != nil {
		return err
	}

	sourceCode, err := GetMultiline(a.reader, "Enter new source code", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.UpdateFile(ctx, id, sourceCode); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("File updated")
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	id, err := a.promptFileID()
	if err != nil {
		return err
	}

	neighbor, err := a.api.DeleteFile(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if neighbor == nil {
		fmt.Println("File deleted, no files left")
	} else {
		fmt.Printf("File deleted, next file: %d\n", *neighbor)
	}
	return nil
}

func (a *App) promptFileID() (int64, error) {
	raw, err := GetSimpleText(a.reader, "Enter file id", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return 0, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("not a valid id: %s", raw)
		return 0, err
	}
	return id, nil
}
