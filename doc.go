// Package archivefile provides uniform read access to archive files in
// multiple container formats (zip, tar, 7z, rar) behind a single handle.
//
// The format of an archive is detected by inspecting its content, never by
// its file extension. Tar archives compressed with gzip, bzip2, xz, zstd,
// lz4, snappy, or lzip are decompressed transparently.
//
// Open an archive, then use the same method set regardless of format:
//
//	archive, err := archivefile.Open("source.zip")
//	if err != nil {
//		return err
//	}
//	defer archive.Close()
//
//	members, err := archive.GetMembers()
//	if err != nil {
//		return err
//	}
//	for _, member := range members {
//		fmt.Println(member.Name)
//	}
//
// The package is read-only: it lists, reads, and extracts members but never
// creates or modifies archives. An ArchiveFile is not safe for concurrent
// use; open one handle per goroutine.
package archivefile
