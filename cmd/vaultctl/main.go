// vaultctl is a terminal client for the vault: it logs in with a PIN, pulls
// the media lists through the gateway and renders the same derived views the
// web UI shows (version families, linked audio, filters, the audio queue).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/vault/gateway"
	"github.com/ervall/mediavault/internal/vault/relations"
	"github.com/ervall/mediavault/internal/vault/store"
	"github.com/ervall/mediavault/internal/vault/view"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "vault server base URL")
	pin := flag.String("pin", os.Getenv("VAULT_PIN"), "access PIN")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	st := store.New()
	client := gateway.NewClient(*server, st)

	ctx := context.Background()
	session, err := client.Login(ctx, *pin)
	if err != nil {
		fail("login failed: %v", err)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "videos":
		listVideos(st)
	case "audio":
		listAudio(st)
	case "genres":
		for _, g := range view.GenreOptions(st.Videos()) {
			fmt.Println(g)
		}
	case "search":
		search(st, args)
	case "queue":
		queue(st)
	case "upload":
		requireAdmin(session)
		upload(ctx, client, args)
	case "edit":
		requireAdmin(session)
		edit(ctx, client, args)
	case "rm":
		requireAdmin(session)
		remove(ctx, client, args)
	case "link":
		requireAdmin(session)
		link(ctx, client, args)
	default:
		usage()
		os.Exit(2)
	}
}

func listVideos(st *store.Store) {
	graph := relations.Resolve(st.Items())
	for _, v := range st.Videos() {
		if v.RelatedToID != nil {
			continue // rendered under its parent
		}
		printVideo(graph, v, "")
		for _, child := range graph.ChildrenOf(v.ID) {
			printVideo(graph, child, "  └ ")
		}
	}
}

func printVideo(graph *relations.Graph, v database.MediaItem, prefix string) {
	line := fmt.Sprintf("%s[%d] %s (%s)", prefix, v.ID, v.DisplayTitle(), v.DisplayGenre())
	if audio, ok := graph.LinkedAudioOf(v.ID); ok {
		line += fmt.Sprintf("  ♪ %s", audio.DisplayTitle())
	}
	fmt.Println(line)
}

func listAudio(st *store.Store) {
	for _, a := range st.Audio() {
		fmt.Printf("[%d] %s (%s)\n", a.ID, a.DisplayTitle(), a.DisplayGenre())
	}
}

func search(st *store.Store, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "substring of title or filename")
	genre := fs.String("genre", view.GenreAll, "exact genre")
	family := fs.Uint("family", 0, "restrict to one version family by video id")
	fs.Parse(args)

	filter := view.Filter{Genre: *genre, Query: *query}
	if *family != 0 {
		id := uint(*family)
		filter.FamilyID = &id
	}
	for _, item := range filter.Apply(st.Items()) {
		fmt.Printf("[%d] %s %s (%s)\n", item.ID, item.MediaType, item.DisplayTitle(), item.DisplayGenre())
	}
}

// queue prints the audio line in play order with linked video annotations.
func queue(st *store.Store) {
	graph := relations.Resolve(st.Items())
	for i, track := range st.Audio() {
		line := fmt.Sprintf("%2d. %s", i+1, track.DisplayTitle())
		if track.RelatedToID != nil {
			if parent, ok := st.Get(*track.RelatedToID); ok {
				line += fmt.Sprintf("  (soundtrack of [%d] %s)", parent.ID, parent.DisplayTitle())
			} else {
				line += "  (soundtrack of a deleted video)"
			}
		}
		fmt.Println(line)
	}
	for _, anomaly := range graph.Anomalies() {
		fmt.Fprintf(os.Stderr, "note: item %d: %s\n", anomaly.ItemID, anomaly.Detail)
	}
}

func upload(ctx context.Context, client *gateway.Client, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	path := fs.String("file", "", "file to upload")
	mediaType := fs.String("type", "video", "video or audio")
	title := fs.String("title", "", "display title")
	genre := fs.String("genre", "", "genre")
	related := fs.Uint("related", 0, "related video id")
	fs.Parse(args)

	var file *os.File
	if *path != "" {
		f, err := os.Open(*path)
		if err != nil {
			fail("cannot open %s: %v", *path, err)
		}
		defer f.Close()
		file = f
	}

	req := gateway.UploadRequest{
		MediaType: *mediaType,
		Title:     *title,
		Genre:     *genre,
		Progress: func(fraction float64) {
			fmt.Printf("\rupload %3.0f%%", fraction*100)
		},
	}
	if file != nil {
		req.File = file
		req.Filename = filepath.Base(*path)
	}
	if *related != 0 {
		id := uint(*related)
		req.RelatedTo = &id
	}

	item, err := client.Upload(ctx, req)
	fmt.Println()
	if err != nil {
		fail("upload failed: %v", err)
	}
	fmt.Printf("uploaded [%d] %s\n", item.ID, item.Filename)
}

func edit(ctx context.Context, client *gateway.Client, args []string) {
	if len(args) < 1 {
		fail("edit needs a media id")
	}
	id := parseID(args[0])

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	genre := fs.String("genre", "", "new genre")
	related := fs.Uint("related", 0, "new related video id")
	clear := fs.Bool("clear-related", false, "remove the relationship link")
	fs.Parse(args[1:])

	patch := gateway.MetadataPatch{ClearRelated: *clear}
	if *title != "" {
		patch.Title = title
	}
	if *genre != "" {
		patch.Genre = genre
	}
	if *related != 0 {
		rid := uint(*related)
		patch.RelatedTo = &rid
	}

	item, err := client.EditMetadata(ctx, id, patch)
	if err != nil {
		fail("edit failed: %v", err)
	}
	fmt.Printf("updated [%d] %s\n", item.ID, item.DisplayTitle())
}

func remove(ctx context.Context, client *gateway.Client, args []string) {
	if len(args) < 1 {
		fail("rm needs a media id")
	}
	if err := client.Delete(ctx, parseID(args[0])); err != nil {
		fail("delete failed: %v", err)
	}
	fmt.Println("deleted")
}

func link(ctx context.Context, client *gateway.Client, args []string) {
	if len(args) < 2 {
		fail("link needs an audio id and a video id (0 to unlink)")
	}
	audioID := parseID(args[0])
	videoID := parseID(args[1])

	var target *uint
	if videoID != 0 {
		target = &videoID
	}
	if err := client.LinkAudioToVideo(ctx, audioID, target); err != nil {
		fail("link failed: %v", err)
	}
	fmt.Println("linked")
}

func requireAdmin(session *gateway.Session) {
	if !session.IsAdmin() {
		fail("this command needs the admin PIN")
	}
}

func parseID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fail("%q is not a media id", s)
	}
	return uint(id)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: vaultctl [-server URL] [-pin PIN] <command>

commands:
  videos                       list version families
  audio                        list audio tracks
  genres                       list selectable genres
  search [-q] [-genre] [-family]   filtered view
  queue                        audio play order with soundtrack links
  upload -file PATH [-type] [-title] [-genre] [-related]
  edit ID [-title] [-genre] [-related|-clear-related]
  rm ID
  link AUDIO_ID VIDEO_ID|0`)
}
