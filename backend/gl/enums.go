package gl

// Enum is a GL enumerant.
type Enum uint32

// Object names a GL object: texture, buffer, framebuffer, renderbuffer,
// shader, program or query. Zero is the null object.
type Object uint32

// Valid reports whether o names an object.
func (o Object) Valid() bool { return o != 0 }

// GL enumerants used by the backend. Values match the Khronos registry.
const (
	NO_ERROR                      Enum = 0
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506

	DEPTH_BUFFER_BIT   Enum = 0x0100
	STENCIL_BUFFER_BIT Enum = 0x0400
	COLOR_BUFFER_BIT   Enum = 0x4000

	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005

	ZERO                     Enum = 0
	ONE                      Enum = 1
	SRC_COLOR                Enum = 0x0300
	ONE_MINUS_SRC_COLOR      Enum = 0x0301
	SRC_ALPHA                Enum = 0x0302
	ONE_MINUS_SRC_ALPHA      Enum = 0x0303
	DST_ALPHA                Enum = 0x0304
	ONE_MINUS_DST_ALPHA      Enum = 0x0305
	DST_COLOR                Enum = 0x0306
	ONE_MINUS_DST_COLOR      Enum = 0x0307
	SRC_ALPHA_SATURATE       Enum = 0x0308
	CONSTANT_COLOR           Enum = 0x8001
	ONE_MINUS_CONSTANT_COLOR Enum = 0x8002

	FUNC_ADD              Enum = 0x8006
	MIN                   Enum = 0x8007
	MAX                   Enum = 0x8008
	FUNC_SUBTRACT         Enum = 0x800A
	FUNC_REVERSE_SUBTRACT Enum = 0x800B

	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	KEEP      Enum = 0x1E00
	REPLACE   Enum = 0x1E01
	INCR      Enum = 0x1E02
	DECR      Enum = 0x1E03
	INVERT    Enum = 0x150A
	INCR_WRAP Enum = 0x8507
	DECR_WRAP Enum = 0x8508

	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408
	CW             Enum = 0x0900
	CCW            Enum = 0x0901

	CULL_FACE           Enum = 0x0B44
	DEPTH_TEST          Enum = 0x0B71
	STENCIL_TEST        Enum = 0x0B90
	BLEND               Enum = 0x0BE2
	SCISSOR_TEST        Enum = 0x0C11
	POLYGON_OFFSET_FILL Enum = 0x8037
	DEPTH_CLAMP         Enum = 0x864F

	VENDOR                   Enum = 0x1F00
	RENDERER                 Enum = 0x1F01
	VERSION                  Enum = 0x1F02
	EXTENSIONS               Enum = 0x1F03
	SHADING_LANGUAGE_VERSION Enum = 0x8B8C

	MAX_TEXTURE_SIZE                 Enum = 0x0D33
	MAX_3D_TEXTURE_SIZE              Enum = 0x8073
	MAX_CUBE_MAP_TEXTURE_SIZE        Enum = 0x851C
	MAX_TEXTURE_IMAGE_UNITS          Enum = 0x8872
	MAX_VERTEX_TEXTURE_IMAGE_UNITS   Enum = 0x8B4C
	MAX_VERTEX_ATTRIBS               Enum = 0x8869
	MAX_VERTEX_UNIFORM_VECTORS       Enum = 0x8DFB
	MAX_DRAW_BUFFERS                 Enum = 0x8824
	MAX_SAMPLES                      Enum = 0x8D57
	MAX_ARRAY_TEXTURE_LAYERS         Enum = 0x88FF
	MAX_TEXTURE_MAX_ANISOTROPY_EXT   Enum = 0x84FF
	TEXTURE_MAX_ANISOTROPY_EXT       Enum = 0x84FE
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D

	TEXTURE_2D                  Enum = 0x0DE1
	TEXTURE_3D                  Enum = 0x806F
	TEXTURE_2D_ARRAY            Enum = 0x8C1A
	TEXTURE_CUBE_MAP            Enum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X Enum = 0x8515
	TEXTURE0                    Enum = 0x84C0

	TEXTURE_MAG_FILTER   Enum = 0x2800
	TEXTURE_MIN_FILTER   Enum = 0x2801
	TEXTURE_WRAP_S       Enum = 0x2802
	TEXTURE_WRAP_T       Enum = 0x2803
	TEXTURE_WRAP_R       Enum = 0x8072
	TEXTURE_BASE_LEVEL   Enum = 0x813C
	TEXTURE_MAX_LEVEL    Enum = 0x813D
	TEXTURE_LOD_BIAS     Enum = 0x8501
	TEXTURE_COMPARE_MODE Enum = 0x884C
	TEXTURE_COMPARE_FUNC Enum = 0x884D

	COMPARE_REF_TO_TEXTURE Enum = 0x884E

	NEAREST                Enum = 0x2600
	LINEAR                 Enum = 0x2601
	NEAREST_MIPMAP_NEAREST Enum = 0x2700
	LINEAR_MIPMAP_NEAREST  Enum = 0x2701
	NEAREST_MIPMAP_LINEAR  Enum = 0x2702
	LINEAR_MIPMAP_LINEAR   Enum = 0x2703

	REPEAT          Enum = 0x2901
	CLAMP_TO_EDGE   Enum = 0x812F
	CLAMP_TO_BORDER Enum = 0x812D
	MIRRORED_REPEAT Enum = 0x8370

	UNPACK_ALIGNMENT Enum = 0x0CF5
	PACK_ALIGNMENT   Enum = 0x0D05

	BYTE                        Enum = 0x1400
	UNSIGNED_BYTE               Enum = 0x1401
	SHORT                       Enum = 0x1402
	UNSIGNED_SHORT              Enum = 0x1403
	INT                         Enum = 0x1404
	UNSIGNED_INT                Enum = 0x1405
	FLOAT                       Enum = 0x1406
	HALF_FLOAT                  Enum = 0x140B
	UNSIGNED_SHORT_4_4_4_4      Enum = 0x8033
	UNSIGNED_SHORT_5_5_5_1      Enum = 0x8034
	UNSIGNED_SHORT_5_6_5        Enum = 0x8363
	UNSIGNED_SHORT_4_4_4_4_REV  Enum = 0x8365
	UNSIGNED_SHORT_1_5_5_5_REV  Enum = 0x8366
	UNSIGNED_INT_2_10_10_10_REV Enum = 0x8368
	UNSIGNED_INT_24_8           Enum = 0x84FA

	DEPTH_COMPONENT Enum = 0x1902
	RED             Enum = 0x1903
	ALPHA           Enum = 0x1906
	RGB             Enum = 0x1907
	RGBA            Enum = 0x1908
	BGRA            Enum = 0x80E1
	RG              Enum = 0x8227
	DEPTH_STENCIL   Enum = 0x84F9

	R8           Enum = 0x8229
	ALPHA8       Enum = 0x803C
	RGB8         Enum = 0x8051
	RGB10_A2     Enum = 0x8059
	RGBA4        Enum = 0x8056
	RGB5_A1      Enum = 0x8057
	RGBA8        Enum = 0x8058
	RGBA16       Enum = 0x805B
	RG16         Enum = 0x822C
	R16F         Enum = 0x822D
	R32F         Enum = 0x822E
	RG16F        Enum = 0x822F
	RG32F        Enum = 0x8230
	RGBA32F      Enum = 0x8814
	RGBA16F      Enum = 0x881A
	SRGB8_ALPHA8 Enum = 0x8C43
	RGB565       Enum = 0x8D62
	RG8_SNORM    Enum = 0x8F95
	RGBA8_SNORM  Enum = 0x8F97

	COMPRESSED_RGB_S3TC_DXT1_EXT              Enum = 0x83F0
	COMPRESSED_RGBA_S3TC_DXT1_EXT             Enum = 0x83F1
	COMPRESSED_RGBA_S3TC_DXT3_EXT             Enum = 0x83F2
	COMPRESSED_RGBA_S3TC_DXT5_EXT             Enum = 0x83F3
	COMPRESSED_SRGB_S3TC_DXT1_EXT             Enum = 0x8C4C
	COMPRESSED_SRGB_ALPHA_S3TC_DXT3_EXT       Enum = 0x8C4E
	COMPRESSED_SRGB_ALPHA_S3TC_DXT5_EXT       Enum = 0x8C4F
	COMPRESSED_RGB_PVRTC_4BPPV1_IMG           Enum = 0x8C00
	COMPRESSED_RGB_PVRTC_2BPPV1_IMG           Enum = 0x8C01
	COMPRESSED_RGBA_PVRTC_4BPPV1_IMG          Enum = 0x8C02
	COMPRESSED_RGBA_PVRTC_2BPPV1_IMG          Enum = 0x8C03
	ETC1_RGB8_OES                             Enum = 0x8D64
	ATC_RGBA_EXPLICIT_ALPHA_AMD               Enum = 0x8C93
	ATC_RGBA_INTERPOLATED_ALPHA_AMD           Enum = 0x87EE
	COMPRESSED_RGB8_ETC2                      Enum = 0x9274
	COMPRESSED_SRGB8_ETC2                     Enum = 0x9275
	COMPRESSED_RGB8_PUNCHTHROUGH_ALPHA1_ETC2  Enum = 0x9276
	COMPRESSED_SRGB8_PUNCHTHROUGH_ALPHA1_ETC2 Enum = 0x9277
	COMPRESSED_RGBA8_ETC2_EAC                 Enum = 0x9278
	COMPRESSED_SRGB8_ALPHA8_ETC2_EAC          Enum = 0x9279

	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	STREAM_DRAW          Enum = 0x88E0
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	FRAGMENT_SHADER Enum = 0x8B30
	VERTEX_SHADER   Enum = 0x8B31
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82

	FRAMEBUFFER                       Enum = 0x8D40
	READ_FRAMEBUFFER                  Enum = 0x8CA8
	DRAW_FRAMEBUFFER                  Enum = 0x8CA9
	RENDERBUFFER                      Enum = 0x8D41
	COLOR_ATTACHMENT0                 Enum = 0x8CE0
	DEPTH_ATTACHMENT                  Enum = 0x8D00
	STENCIL_ATTACHMENT                Enum = 0x8D20
	DEPTH_STENCIL_ATTACHMENT          Enum = 0x821A
	FRAMEBUFFER_COMPLETE              Enum = 0x8CD5
	FRAMEBUFFER_INCOMPLETE_ATTACHMENT Enum = 0x8CD6
	FRAMEBUFFER_UNSUPPORTED           Enum = 0x8CDD
	DEPTH_COMPONENT16                 Enum = 0x81A5
	DEPTH_COMPONENT24                 Enum = 0x81A6
	DEPTH24_STENCIL8                  Enum = 0x88F0

	SAMPLES_PASSED         Enum = 0x8914
	QUERY_RESULT           Enum = 0x8866
	QUERY_RESULT_AVAILABLE Enum = 0x8867

	GUILTY_CONTEXT_RESET   Enum = 0x8253
	INNOCENT_CONTEXT_RESET Enum = 0x8254
	UNKNOWN_CONTEXT_RESET  Enum = 0x8255
)
