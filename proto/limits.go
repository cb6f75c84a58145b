package proto

// Size limits mirrored from the 9P2000.L wire format. These bound
// both how much memory a single Decoder buffer must hold and how
// much an Encoder will ever write for a variable-length field.
const (
	MaxVersionLen  = 20
	MaxFilenameLen = 512
	MaxWElem       = 16
	MaxUnameLen    = 45
	MaxClientIDLen = 64
	MaxSymtgtLen   = 1024

	// MaxOffset is the largest offset a 64-bit signed file size allows.
	MaxOffset = 1<<63 - 1

	// MinBufSize is large enough to hold the largest fixed-overhead
	// message (a full Twalk) plus its header.
	MinBufSize = MaxWElem*(MaxFilenameLen+2) + 32

	// DefaultBufSize is used when a caller does not size their own
	// Decoder buffer.
	DefaultBufSize = 1 << 20

	maxMsgSize = 1<<32 - 1
	minMsgSize = 7 // size[4] type[1] tag[2]
)

// minSizeLUT holds the minimum valid size, in bytes including the
// 7-byte header, of a message of a given type. A zero entry means the
// type is either unused or has no fixed minimum beyond the header.
var minSizeLUT = [128]int32{
	Rlerror: 11, // ecode[4]

	Tstatfs: 11, // fid[4]
	Rstatfs: 67, // type[4] bsize[4] blocks[8] bfree[8] bavail[8] files[8] ffree[8] fsid[8] namelen[4]

	Tlopen: 15, // fid[4] flags[4]
	Rlopen: 24, // qid[13] iounit[4]

	Tlcreate: 25, // fid[4] name[2] flags[4] mode[4] gid[4]
	Rlcreate: 24, // qid[13] iounit[4]

	Tsymlink: 19, // fid[4] name[2] symtgt[2] gid[4]
	Rsymlink: 20, // qid[13]

	Tmknod: 29, // fid[4] name[2] mode[4] major[4] minor[4] gid[4]
	Rmknod: 20, // qid[13]

	Trename: 17, // fid[4] dfid[4] name[2]
	Rrename: 7,

	Treadlink: 11, // fid[4]
	Rreadlink: 9,  // target[2]

	Tgetattr: 19,  // fid[4] request_mask[8]
	Rgetattr: 160, // valid[8] qid[13] ... data_version[8]

	Tsetattr: 67, // fid[4] valid[4] mode[4] uid[4] gid[4] size[8] atime[16] mtime[16]
	Rsetattr: 7,

	Txattrwalk:   17, // fid[4] newfid[4] name[2]
	Rxattrwalk:   15, // size[8]
	Txattrcreate: 25, // fid[4] name[2] attr_size[8] flags[4]
	Rxattrcreate: 7,

	Treaddir: 23, // fid[4] offset[8] count[4]
	Rreaddir: 11, // count[4]

	Tfsync: 11, // fid[4]
	Rfsync: 7,

	Tlock:    38, // fid[4] type[1] flags[4] start[8] length[8] proc_id[4] client_id[2]
	Rlock:    8,  // status[1]
	Tgetlock: 34, // fid[4] type[1] start[8] length[8] proc_id[4] client_id[2]
	Rgetlock: 30, // type[1] start[8] length[8] proc_id[4] client_id[2]

	Tlink: 17, // dfid[4] fid[4] name[2]
	Rlink: 7,

	Tmkdir: 21, // fid[4] name[2] mode[4] gid[4]
	Rmkdir: 20, // qid[13]

	Trenameat: 19, // olddirfid[4] oldname[2] newdirfid[4] newname[2]
	Rrenameat: 7,

	Tunlinkat: 17, // dirfid[4] name[2] flags[4]
	Runlinkat: 7,

	Tversion: 13, // msize[4] version[2]
	Rversion: 13,

	Tauth: 19, // afid[4] uname[2] aname[2] n_uname[4]
	Rauth: 20, // qid[13]

	Tattach: 23, // fid[4] afid[4] uname[2] aname[2] n_uname[4]
	Rattach: 20, // qid[13]

	Tflush: 9, // oldtag[2]
	Rflush: 7,

	Twalk: 17, // fid[4] newfid[4] nwname[2]
	Rwalk: 9,  // nwqid[2]

	Tread:  23, // fid[4] offset[8] count[4]
	Rread:  11, // count[4]
	Twrite: 23, // fid[4] offset[8] count[4]
	Rwrite: 11, // count[4]

	Tclunk: 11, // fid[4]
	Rclunk: 7,

	Tremove: 11, // fid[4]
	Rremove: 7,
}
